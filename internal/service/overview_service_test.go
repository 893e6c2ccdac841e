package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/repository"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/storage"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/idgen"
)

func setupTestOverviewService() (OverviewService, SemesterService) {
	repo := repository.NewRepository()
	semester := NewSemesterService(repo, idgen.New(), storage.NewFileStore(), zap.NewNop())
	return NewOverviewService(repo, semester, zap.NewNop()), semester
}

func TestOverviewService_ActiveLectureOverview(t *testing.T) {
	svc, semester := setupTestOverviewService()
	ctx := context.Background()

	if _, err := svc.ActiveLectureOverview(ctx); !errors.Is(err, ErrNoActiveLecture) {
		t.Errorf("expected ErrNoActiveLecture, got %v", err)
	}

	// 60% of 10 sheets with 10 points each, 4 sheets recorded with 5/10
	sys, _ := model.NewLectureSystem("Exercises", model.PercentOfTotal, 60, 0, 10)
	lec, _ := model.NewLecture("Analysis", []model.LectureSystem{sys}, 10, true, 3)
	stored := mustAdd(t, semester, &lec)
	_ = semester.SetActiveLecture(ctx, stored.ID)
	for nr := 1; nr <= 4; nr++ {
		sheet := newTestSheet(t, nr, map[string]model.Points{stored.Systems[0].ID: {Achieved: 5, Total: 10}})
		if _, err := semester.AddSheetToActiveLecture(ctx, sheet); err != nil {
			t.Fatalf("AddSheetToActiveLecture: %v", err)
		}
	}

	ov, err := svc.ActiveLectureOverview(ctx)
	if err != nil {
		t.Fatalf("ActiveLectureOverview: %v", err)
	}
	if ov.Status != "can_be_achieved" {
		t.Errorf("expected can_be_achieved, got %s", ov.Status)
	}
	if ov.SheetsRecorded != 4 || ov.SheetsRemaining != 6 {
		t.Errorf("unexpected sheet counts: %+v", ov)
	}
	if len(ov.Systems) != 1 {
		t.Fatalf("expected one system row, got %d", len(ov.Systems))
	}
	row := ov.Systems[0]
	if row.Projection != "remaining" || row.PointsNeededPerSheet == nil || *row.PointsNeededPerSheet != 6.7 {
		t.Errorf("expected 6.7 per sheet, got %+v", row)
	}
	if row.Percentage == nil || *row.Percentage != 50 {
		t.Errorf("expected 50 percent, got %v", row.Percentage)
	}
	if ov.Presentation == nil || ov.Presentation.Achieved != 2 || ov.Presentation.Total != 3 {
		t.Errorf("unexpected presentation %+v", ov.Presentation)
	}
}

func TestOverviewService_LectureOverview_NotFound(t *testing.T) {
	svc, _ := setupTestOverviewService()

	if _, err := svc.LectureOverview(context.Background(), "LEC_missing"); !errors.Is(err, ErrLectureNotFound) {
		t.Errorf("expected ErrLectureNotFound, got %v", err)
	}
}

func TestOverviewService_LogsLookupFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	repo := repository.NewRepository()
	semester := NewSemesterService(repo, idgen.New(), storage.NewFileStore(), zap.NewNop())
	svc := NewOverviewService(repo, semester, zap.New(core))
	ctx := context.Background()

	_, _ = svc.LectureOverview(ctx, "LEC_missing")
	_, _ = svc.ActiveLectureOverview(ctx)

	entries := logs.FilterMessage("overview lookup failed").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 lookup failures logged, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["lecture_id"]; got != "LEC_missing" {
		t.Errorf("expected lecture_id LEC_missing, got %v", got)
	}
}

func TestOverviewService_LectureOverview_NoInfo(t *testing.T) {
	svc, semester := setupTestOverviewService()

	sys, _ := model.NewLectureSystem("Exercises", model.PercentOfTotal, 50, 0, 0)
	lec, _ := model.NewLecture("Open ended", []model.LectureSystem{sys}, 0, false, 0)
	stored := mustAdd(t, semester, &lec)

	ov, err := svc.LectureOverview(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("LectureOverview: %v", err)
	}
	if ov.Status != "no_info_available" {
		t.Errorf("expected no_info_available, got %s", ov.Status)
	}
	if ov.Systems[0].Percentage != nil || ov.Systems[0].PointsNeededPerSheet != nil {
		t.Errorf("nothing recorded yet, got %+v", ov.Systems[0])
	}
	if ov.Presentation != nil {
		t.Error("lecture without presentation requirement should have no presentation")
	}
}
