package repository

import (
	"context"
	"sync"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
)

// LectureRepository lectures of the open semester plus the active-lecture selection.
// Lectures keep insertion order. Values are copied in and out, callers never
// hold repository state.
type LectureRepository interface {
	Create(ctx context.Context, lecture *model.Lecture) error
	GetByID(ctx context.Context, id string) (*model.Lecture, error)
	List(ctx context.Context) ([]model.Lecture, error)
	Update(ctx context.Context, lecture *model.Lecture) error
	Delete(ctx context.Context, id string) error
	// ReplaceAll swaps the whole collection and clears the active lecture.
	ReplaceAll(ctx context.Context, lectures []model.Lecture) error

	SetActive(ctx context.Context, id string) error
	// ActiveID returns the stored selection; it is not checked against the collection.
	ActiveID(ctx context.Context) (string, bool)
	ClearActive(ctx context.Context) error
}

type lectureRepo struct {
	sync.RWMutex
	lectures []model.Lecture
	activeID string
}

var _ LectureRepository = (*lectureRepo)(nil)

// NewLectureRepo creates an empty in-memory LectureRepository.
func NewLectureRepo() LectureRepository {
	return &lectureRepo{lectures: make([]model.Lecture, 0)}
}

func (r *lectureRepo) indexOf(id string) int {
	for i := range r.lectures {
		if r.lectures[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *lectureRepo) Create(_ context.Context, lecture *model.Lecture) error {
	r.Lock()
	defer r.Unlock()

	r.lectures = append(r.lectures, lecture.Clone())
	return nil
}

func (r *lectureRepo) GetByID(_ context.Context, id string) (*model.Lecture, error) {
	r.RLock()
	defer r.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	lec := r.lectures[i].Clone()
	return &lec, nil
}

func (r *lectureRepo) List(_ context.Context) ([]model.Lecture, error) {
	r.RLock()
	defer r.RUnlock()

	result := make([]model.Lecture, 0, len(r.lectures))
	for i := range r.lectures {
		result = append(result, r.lectures[i].Clone())
	}
	return result, nil
}

func (r *lectureRepo) Update(_ context.Context, lecture *model.Lecture) error {
	r.Lock()
	defer r.Unlock()

	i := r.indexOf(lecture.ID)
	if i < 0 {
		return ErrNotFound
	}
	r.lectures[i] = lecture.Clone()
	return nil
}

func (r *lectureRepo) Delete(_ context.Context, id string) error {
	r.Lock()
	defer r.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.lectures = append(r.lectures[:i], r.lectures[i+1:]...)
	if r.activeID == id {
		r.activeID = ""
	}
	return nil
}

func (r *lectureRepo) ReplaceAll(_ context.Context, lectures []model.Lecture) error {
	r.Lock()
	defer r.Unlock()

	next := make([]model.Lecture, 0, len(lectures))
	for i := range lectures {
		next = append(next, lectures[i].Clone())
	}
	r.lectures = next
	r.activeID = ""
	return nil
}

func (r *lectureRepo) SetActive(_ context.Context, id string) error {
	r.Lock()
	defer r.Unlock()

	r.activeID = id
	return nil
}

func (r *lectureRepo) ActiveID(_ context.Context) (string, bool) {
	r.RLock()
	defer r.RUnlock()

	return r.activeID, r.activeID != ""
}

// ClearActive drops the selection without touching the lectures.
func (r *lectureRepo) ClearActive(_ context.Context) error {
	r.Lock()
	defer r.Unlock()

	r.activeID = ""
	return nil
}
