package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/dto"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/projection"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/repository"
)

// OverviewService progress and projections of lectures. Nothing is cached;
// every call recomputes from the stored lecture.
type OverviewService interface {
	LectureOverview(ctx context.Context, id string) (*dto.LectureOverviewResponse, error)
	ActiveLectureOverview(ctx context.Context) (*dto.LectureOverviewResponse, error)
}

type overviewService struct {
	repo     *repository.Repository
	semester SemesterService
	logger   *zap.Logger
}

// NewOverviewService creates an OverviewService. The active lecture is resolved through semester.
func NewOverviewService(repo *repository.Repository, semester SemesterService, logger *zap.Logger) OverviewService {
	return &overviewService{repo: repo, semester: semester, logger: logger}
}

func (s *overviewService) LectureOverview(ctx context.Context, id string) (*dto.LectureOverviewResponse, error) {
	lec, err := s.repo.Lecture.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("overview lookup failed", zap.String("lecture_id", id), zap.Error(err))
		return nil, mapNotFound(err, ErrLectureNotFound)
	}
	return s.overview(lec), nil
}

func (s *overviewService) ActiveLectureOverview(ctx context.Context) (*dto.LectureOverviewResponse, error) {
	lec, err := s.semester.ActiveLecture(ctx)
	if err != nil {
		s.logger.Debug("overview lookup failed", zap.String("lecture_id", "active"), zap.Error(err))
		return nil, err
	}
	return s.overview(lec), nil
}

func (s *overviewService) overview(lec *model.Lecture) *dto.LectureOverviewResponse {
	resp := toOverviewResponse(lec)
	s.logger.Debug("overview computed", zap.String("lecture_id", lec.ID), zap.String("status", resp.Status))
	return resp
}

func toOverviewResponse(lec *model.Lecture) *dto.LectureOverviewResponse {
	ov := projection.Overview(lec)

	resp := &dto.LectureOverviewResponse{
		LectureID:       lec.ID,
		LectureName:     lec.Name,
		Status:          ov.Status.String(),
		SheetsRecorded:  lec.SheetCount(),
		TotalSheetCount: lec.TotalSheetCount,
		SheetsRemaining: ov.SheetsRemaining,
		Systems:         make([]dto.SystemOverviewResponse, 0, len(ov.Systems)),
	}
	for _, row := range ov.Systems {
		sys := dto.SystemOverviewResponse{
			SystemID:   row.System.ID,
			Name:       row.System.Name,
			SystemType: row.System.Type.String(),
			Criteria:   row.System.Criteria,
			Achieved:   row.Progress.Achieved,
			Total:      row.Progress.Total,
			Projection: row.Projection.Kind.String(),
			Estimated:  row.System.EstimatesPerSheet(),
		}
		if row.Progress.Total > 0 {
			pct := row.Progress.Achieved / row.Progress.Total * 100
			sys.Percentage = &pct
		}
		if row.Projection.Kind == projection.KindRemaining {
			perSheet := row.Projection.PerSheet
			sys.PointsNeededPerSheet = &perSheet
		}
		resp.Systems = append(resp.Systems, sys)
	}
	if ov.Presentation != nil {
		resp.Presentation = &dto.PointsResponse{Achieved: ov.Presentation.Achieved, Total: ov.Presentation.Total}
	}
	return resp
}
