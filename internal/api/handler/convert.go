package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/dto"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	apperrors "github.com/Dudrie/scheinprogramm.releases-sub000/pkg/errors"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/response"
)

// ── request → model ──

func toLectureModel(req *dto.LectureRequest) (*model.Lecture, error) {
	systems := make([]model.LectureSystem, 0, len(req.Systems))
	for _, s := range req.Systems {
		typ, err := model.ParseSystemType(s.SystemType)
		if err != nil {
			return nil, err
		}
		sys, err := model.NewLectureSystem(s.Name, typ, s.Criteria, s.CriteriaPerSheet, s.PointsPerSheet)
		if err != nil {
			return nil, err
		}
		sys.ID = s.ID
		systems = append(systems, sys)
	}

	lec, err := model.NewLecture(req.Name, systems, req.TotalSheetCount, req.HasPresentationPoints, req.CriteriaPresentation)
	if err != nil {
		return nil, err
	}
	return &lec, nil
}

func toSheetModel(req *dto.SheetRequest) (*model.Sheet, error) {
	date, err := parseSheetDate(req.Date)
	if err != nil {
		return nil, err
	}
	sheet, err := model.NewSheet(req.SheetNr, date, req.HasPresented)
	if err != nil {
		return nil, err
	}
	for _, p := range req.Points {
		sheet.SetPoints(p.SystemID, model.Points{Achieved: p.Achieved, Total: p.Total})
	}
	return &sheet, nil
}

var errBadDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

func parseSheetDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadDate, s)
}

// ── model → response ──

func toLectureResponse(lec *model.Lecture, activeID string) dto.LectureResponse {
	resp := dto.LectureResponse{
		ID:                    lec.ID,
		Name:                  lec.Name,
		Systems:               make([]dto.LectureSystemResponse, 0, len(lec.Systems)),
		Sheets:                make([]dto.SheetResponse, 0, len(lec.Sheets)),
		TotalSheetCount:       lec.TotalSheetCount,
		HasPresentationPoints: lec.HasPresentationPoints,
		CriteriaPresentation:  lec.CriteriaPresentation,
		IsActive:              lec.ID != "" && lec.ID == activeID,
	}
	for _, s := range lec.Systems {
		resp.Systems = append(resp.Systems, dto.LectureSystemResponse{
			ID:               s.ID,
			Name:             s.Name,
			SystemType:       s.Type.String(),
			Criteria:         s.Criteria,
			CriteriaPerSheet: s.CriteriaPerSheet,
			PointsPerSheet:   s.PointsPerSheet,
		})
	}
	for i := range lec.Sheets {
		resp.Sheets = append(resp.Sheets, toSheetResponse(lec, &lec.Sheets[i]))
	}
	return resp
}

// toSheetResponse lists points in the lecture's system order.
func toSheetResponse(lec *model.Lecture, s *model.Sheet) dto.SheetResponse {
	resp := dto.SheetResponse{
		ID:           s.ID,
		SheetNr:      s.SheetNr,
		Date:         s.Date.Format(time.RFC3339),
		HasPresented: s.HasPresented,
		Points:       make([]dto.SheetPointsResponse, 0, len(s.Points)),
	}
	for _, sys := range lec.Systems {
		if p, ok := s.PointsOf(sys.ID); ok {
			resp.Points = append(resp.Points, dto.SheetPointsResponse{SystemID: sys.ID, Achieved: p.Achieved, Total: p.Total})
		}
	}
	return resp
}

// ── shared error answers ──

// respondInvalid answers 400 for request data the model rejects. It reports
// false when err is of another kind.
func respondInvalid(c *gin.Context, err error) bool {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithData(c, http.StatusBadRequest, 10002, verr.Error(), verr.Fields)
	case errors.Is(err, errBadDate):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, model.ErrUnknownSystemType):
		response.BadRequest(c, 10001, err.Error())
	default:
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid request parameters", err.Error())
}
