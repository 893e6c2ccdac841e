package handler

import "github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"

// Handler entry point to all handlers.
type Handler struct {
	Lecture       *LectureHandler
	ActiveLecture *ActiveLectureHandler
	Semester      *SemesterHandler
	Export        *ExportHandler
}

// NewHandler wires the handlers to the services.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Lecture:       NewLectureHandler(svc.Semester, svc.Overview),
		ActiveLecture: NewActiveLectureHandler(svc.Semester, svc.Overview),
		Semester:      NewSemesterHandler(svc.Semester),
		Export:        NewExportHandler(svc.Export),
	}
}
