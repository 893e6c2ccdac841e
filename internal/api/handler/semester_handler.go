package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/dto"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"
	apperrors "github.com/Dudrie/scheinprogramm.releases-sub000/pkg/errors"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/response"
)

// SemesterHandler semester file handling: dump, load, new, save.
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler creates a SemesterHandler.
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// GetSemester the semester in file format, not wrapped in the envelope.
// GET /api/v1/semester
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	data, err := h.semesterSvc.DataAsJSON(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ReplaceSemester loads the semester from the request body.
// PUT /api/v1/semester
func (h *SemesterHandler) ReplaceSemester(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.semesterSvc.LoadDataFromJSON(ctx, data); err != nil {
		h.handleSemesterError(c, err)
		return
	}
	h.respondSummary(c, "")
}

// NewSemester POST /api/v1/semester/new
func (h *SemesterHandler) NewSemester(c *gin.Context) {
	if err := h.semesterSvc.NewSemester(c.Request.Context()); err != nil {
		h.handleSemesterError(c, err)
		return
	}
	response.OK(c, dto.SemesterResponse{})
}

// SaveSemester POST /api/v1/semester/save
func (h *SemesterHandler) SaveSemester(c *gin.Context) {
	var req dto.SemesterFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.semesterSvc.SaveSemester(c.Request.Context(), req.Path); err != nil {
		h.handleSemesterError(c, err)
		return
	}
	h.respondSummary(c, req.Path)
}

// LoadSemester POST /api/v1/semester/load
func (h *SemesterHandler) LoadSemester(c *gin.Context) {
	var req dto.SemesterFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.semesterSvc.LoadSemester(c.Request.Context(), req.Path); err != nil {
		h.handleSemesterError(c, err)
		return
	}
	h.respondSummary(c, req.Path)
}

func (h *SemesterHandler) respondSummary(c *gin.Context, path string) {
	lectures, err := h.semesterSvc.ListLectures(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.SemesterResponse{LectureCount: len(lectures), Path: path})
}

func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidSemesterFile):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22001, "invalid semester file", err.Error())
	default:
		// file system failures; the service already logged them
		response.ErrorWithDetails(c, http.StatusInternalServerError, 22002, "semester file could not be processed", err.Error())
	}
}
