package repository

import "errors"

// ErrNotFound no record with the requested id.
var ErrNotFound = errors.New("record not found")

// Repository groups all repositories.
type Repository struct {
	Lecture LectureRepository
}

// NewRepository creates the in-memory repositories of one semester.
func NewRepository() *Repository {
	return &Repository{
		Lecture: NewLectureRepo(),
	}
}
