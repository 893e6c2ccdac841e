package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/dto"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/response"
)

// LectureHandler lecture CRUD and per-lecture overview.
type LectureHandler struct {
	semesterSvc service.SemesterService
	overviewSvc service.OverviewService
}

// NewLectureHandler creates a LectureHandler.
func NewLectureHandler(semesterSvc service.SemesterService, overviewSvc service.OverviewService) *LectureHandler {
	return &LectureHandler{semesterSvc: semesterSvc, overviewSvc: overviewSvc}
}

// ListLectures all lectures in insertion order.
// GET /api/v1/lectures
func (h *LectureHandler) ListLectures(c *gin.Context) {
	ctx := c.Request.Context()
	lectures, err := h.semesterSvc.ListLectures(ctx)
	if err != nil {
		response.InternalError(c)
		return
	}

	activeID := h.activeID(ctx)
	list := make([]dto.LectureResponse, 0, len(lectures))
	for i := range lectures {
		list = append(list, toLectureResponse(&lectures[i], activeID))
	}
	response.OK(c, gin.H{"list": list})
}

// GetLecture GET /api/v1/lectures/:id
func (h *LectureHandler) GetLecture(c *gin.Context) {
	ctx := c.Request.Context()
	lec, err := h.semesterSvc.GetLecture(ctx, c.Param("id"))
	if err != nil {
		h.handleLectureError(c, err)
		return
	}
	response.OK(c, toLectureResponse(lec, h.activeID(ctx)))
}

// CreateLecture POST /api/v1/lectures
func (h *LectureHandler) CreateLecture(c *gin.Context) {
	var req dto.LectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	lec, err := toLectureModel(&req)
	if err != nil {
		h.handleLectureError(c, err)
		return
	}

	ctx := c.Request.Context()
	stored, err := h.semesterSvc.AddLecture(ctx, lec)
	if err != nil {
		h.handleLectureError(c, err)
		return
	}
	response.Created(c, toLectureResponse(stored, h.activeID(ctx)))
}

// UpdateLecture replaces name, systems and sheet settings. Sheets are kept.
// PUT /api/v1/lectures/:id
func (h *LectureHandler) UpdateLecture(c *gin.Context) {
	var req dto.LectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	lec, err := toLectureModel(&req)
	if err != nil {
		h.handleLectureError(c, err)
		return
	}
	lec.AssignID(c.Param("id"))

	ctx := c.Request.Context()
	stored, err := h.semesterSvc.EditLecture(ctx, lec)
	if err != nil {
		h.handleLectureError(c, err)
		return
	}
	response.OK(c, toLectureResponse(stored, h.activeID(ctx)))
}

// DeleteLecture DELETE /api/v1/lectures/:id
func (h *LectureHandler) DeleteLecture(c *gin.Context) {
	if err := h.semesterSvc.DeleteLecture(c.Request.Context(), c.Param("id")); err != nil {
		h.handleLectureError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetLectureOverview GET /api/v1/lectures/:id/overview
func (h *LectureHandler) GetLectureOverview(c *gin.Context) {
	ov, err := h.overviewSvc.LectureOverview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLectureError(c, err)
		return
	}
	response.OK(c, ov)
}

func (h *LectureHandler) activeID(ctx context.Context) string {
	lec, err := h.semesterSvc.ActiveLecture(ctx)
	if err != nil {
		return ""
	}
	return lec.ID
}

func (h *LectureHandler) handleLectureError(c *gin.Context, err error) {
	if respondInvalid(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrLectureNotFound):
		response.NotFound(c, 20001, "lecture not found")
	case errors.Is(err, service.ErrLectureAlreadyStored):
		response.Conflict(c, 20002, "lecture already has an id")
	default:
		response.InternalError(c)
	}
}
