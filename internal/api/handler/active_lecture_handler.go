package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/dto"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/service"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/response"
)

// ActiveLectureHandler selection of the active lecture and its sheets.
type ActiveLectureHandler struct {
	semesterSvc service.SemesterService
	overviewSvc service.OverviewService
}

// NewActiveLectureHandler creates an ActiveLectureHandler.
func NewActiveLectureHandler(semesterSvc service.SemesterService, overviewSvc service.OverviewService) *ActiveLectureHandler {
	return &ActiveLectureHandler{semesterSvc: semesterSvc, overviewSvc: overviewSvc}
}

// ────────────────────── selection ──────────────────────

// GetActiveLecture GET /api/v1/active-lecture
func (h *ActiveLectureHandler) GetActiveLecture(c *gin.Context) {
	lec, err := h.semesterSvc.ActiveLecture(c.Request.Context())
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, toLectureResponse(lec, lec.ID))
}

// SetActiveLecture PUT /api/v1/active-lecture
func (h *ActiveLectureHandler) SetActiveLecture(c *gin.Context) {
	var req dto.SetActiveLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.semesterSvc.SetActiveLecture(c.Request.Context(), req.LectureID); err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, gin.H{"lecture_id": req.LectureID})
}

// ClearActiveLecture DELETE /api/v1/active-lecture
func (h *ActiveLectureHandler) ClearActiveLecture(c *gin.Context) {
	if err := h.semesterSvc.ClearActiveLecture(c.Request.Context()); err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── queries ──────────────────────

// GetOverview GET /api/v1/active-lecture/overview
func (h *ActiveLectureHandler) GetOverview(c *gin.Context) {
	ov, err := h.overviewSvc.ActiveLectureOverview(c.Request.Context())
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, ov)
}

// GetLastSheetNr GET /api/v1/active-lecture/last-sheet-nr
func (h *ActiveLectureHandler) GetLastSheetNr(c *gin.Context) {
	nr, err := h.semesterSvc.ActiveLectureLastSheetNr(c.Request.Context())
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, dto.LastSheetNrResponse{LastSheetNr: nr})
}

// GetPresentationPoints GET /api/v1/active-lecture/presentation-points
func (h *ActiveLectureHandler) GetPresentationPoints(c *gin.Context) {
	p, err := h.semesterSvc.ActiveLecturePresentationPoints(c.Request.Context())
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, dto.PointsResponse{Achieved: p.Achieved, Total: p.Total})
}

// GetSystemPoints GET /api/v1/active-lecture/systems/:systemId/points
func (h *ActiveLectureHandler) GetSystemPoints(c *gin.Context) {
	p, err := h.semesterSvc.ActiveLecturePointsOfSystem(c.Request.Context(), c.Param("systemId"))
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, dto.PointsResponse{Achieved: p.Achieved, Total: p.Total})
}

// ────────────────────── sheets ──────────────────────

// AddSheet POST /api/v1/active-lecture/sheets
func (h *ActiveLectureHandler) AddSheet(c *gin.Context) {
	var req dto.SheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sheet, err := toSheetModel(&req)
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}

	ctx := c.Request.Context()
	stored, err := h.semesterSvc.AddSheetToActiveLecture(ctx, sheet)
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	lec, err := h.semesterSvc.ActiveLecture(ctx)
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.Created(c, toSheetResponse(lec, stored))
}

// UpdateSheet PUT /api/v1/active-lecture/sheets/:sheetId
func (h *ActiveLectureHandler) UpdateSheet(c *gin.Context) {
	var req dto.SheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sheet, err := toSheetModel(&req)
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	sheet.ID = c.Param("sheetId")

	ctx := c.Request.Context()
	stored, err := h.semesterSvc.EditSheetOfActiveLecture(ctx, sheet)
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	lec, err := h.semesterSvc.ActiveLecture(ctx)
	if err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, toSheetResponse(lec, stored))
}

// DeleteSheet DELETE /api/v1/active-lecture/sheets/:sheetId
func (h *ActiveLectureHandler) DeleteSheet(c *gin.Context) {
	if err := h.semesterSvc.RemoveSheetFromActiveLecture(c.Request.Context(), c.Param("sheetId")); err != nil {
		h.handleActiveLectureError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ActiveLectureHandler) handleActiveLectureError(c *gin.Context, err error) {
	if respondInvalid(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrNoActiveLecture):
		response.Conflict(c, 21001, "no active lecture")
	case errors.Is(err, service.ErrSheetNotFound):
		response.NotFound(c, 21002, "sheet not found")
	case errors.Is(err, service.ErrNoPresentationRequirement):
		response.NotFound(c, 21003, "active lecture has no presentation requirement")
	default:
		response.InternalError(c)
	}
}
