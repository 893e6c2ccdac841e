package dto

// SemesterFileRequest path of a semester file on the local disk.
type SemesterFileRequest struct {
	Path string `json:"path" binding:"required"`
}

// SemesterResponse summary after a semester was created, loaded or saved.
type SemesterResponse struct {
	LectureCount int    `json:"lecture_count"`
	Path         string `json:"path,omitempty"`
}
