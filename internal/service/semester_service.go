package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/model"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/projection"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/repository"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/storage"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/idgen"
)

// ── semester errors ──

var (
	ErrLectureNotFound           = errors.New("lecture not found")
	ErrLectureAlreadyStored      = errors.New("lecture already has an id")
	ErrNoActiveLecture           = errors.New("no active lecture")
	ErrSheetNotFound             = errors.New("sheet not found in active lecture")
	ErrNoPresentationRequirement = errors.New("active lecture has no presentation requirement")
)

// SemesterService owns the lectures of the open semester and the active-lecture
// selection. Every read and write of lecture data goes through it.
type SemesterService interface {
	ListLectures(ctx context.Context) ([]model.Lecture, error)
	GetLecture(ctx context.Context, id string) (*model.Lecture, error)
	AddLecture(ctx context.Context, lecture *model.Lecture) (*model.Lecture, error)
	EditLecture(ctx context.Context, lecture *model.Lecture) (*model.Lecture, error)
	DeleteLecture(ctx context.Context, id string) error

	SetActiveLecture(ctx context.Context, id string) error
	ClearActiveLecture(ctx context.Context) error
	ActiveLecture(ctx context.Context) (*model.Lecture, error)

	AddSheetToActiveLecture(ctx context.Context, sheet *model.Sheet) (*model.Sheet, error)
	EditSheetOfActiveLecture(ctx context.Context, sheet *model.Sheet) (*model.Sheet, error)
	RemoveSheetFromActiveLecture(ctx context.Context, sheetID string) error

	ActiveLecturePointsOfSystem(ctx context.Context, systemID string) (model.Points, error)
	ActiveLectureLastSheetNr(ctx context.Context) (int, error)
	ActiveLecturePresentationPoints(ctx context.Context) (model.Points, error)

	DataAsJSON(ctx context.Context) ([]byte, error)
	LoadDataFromJSON(ctx context.Context, data []byte) error
	NewSemester(ctx context.Context) error
	SaveSemester(ctx context.Context, path string) error
	LoadSemester(ctx context.Context, path string) error
}

type semesterService struct {
	// mu serializes read-modify-write sequences against the repository.
	mu     sync.Mutex
	repo   *repository.Repository
	ids    *idgen.Generator
	store  *storage.FileStore
	logger *zap.Logger
}

// NewSemesterService creates a SemesterService.
func NewSemesterService(repo *repository.Repository, ids *idgen.Generator, store *storage.FileStore, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, ids: ids, store: store, logger: logger}
}

// ────────────────────── lectures ──────────────────────

func (s *semesterService) ListLectures(ctx context.Context) ([]model.Lecture, error) {
	return s.repo.Lecture.List(ctx)
}

func (s *semesterService) GetLecture(ctx context.Context, id string) (*model.Lecture, error) {
	lec, err := s.repo.Lecture.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrLectureNotFound)
	}
	return lec, nil
}

// AddLecture stores a copy of lecture under a fresh id. Duplicate names are allowed.
func (s *semesterService) AddLecture(ctx context.Context, lecture *model.Lecture) (*model.Lecture, error) {
	if lecture.ID != "" {
		return nil, ErrLectureAlreadyStored
	}
	if err := lecture.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lec := lecture.Clone()
	lec.AssignID(s.ids.NewID(idgen.PrefixLecture))
	s.assignSystemIDs(&lec)
	for i := range lec.Sheets {
		if lec.Sheets[i].ID == "" {
			lec.Sheets[i].ID = s.ids.NewID(idgen.PrefixSheet)
		}
	}
	lec.PruneSheetPoints()

	if err := s.repo.Lecture.Create(ctx, &lec); err != nil {
		s.logger.Error("failed to store lecture", zap.Error(err))
		return nil, err
	}

	s.logger.Info("lecture added", zap.String("lecture_id", lec.ID), zap.String("name", lec.Name))
	return &lec, nil
}

// EditLecture replaces the stored lecture with the same id. The stored sheets are
// kept, and their points for systems missing from the new version are dropped.
func (s *semesterService) EditLecture(ctx context.Context, lecture *model.Lecture) (*model.Lecture, error) {
	if err := lecture.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.repo.Lecture.GetByID(ctx, lecture.ID)
	if err != nil {
		return nil, mapNotFound(err, ErrLectureNotFound)
	}

	next := lecture.Clone()
	s.assignSystemIDs(&next)
	next.Sheets = old.Sheets

	var removed []string
	for _, sys := range old.Systems {
		if !next.HasSystem(sys.ID) {
			removed = append(removed, sys.ID)
		}
	}
	next.PruneSheetPoints()

	if err := s.repo.Lecture.Update(ctx, &next); err != nil {
		return nil, mapNotFound(err, ErrLectureNotFound)
	}

	s.logger.Info("lecture edited",
		zap.String("lecture_id", next.ID),
		zap.Strings("removed_systems", removed),
	)
	return &next, nil
}

// DeleteLecture removes the lecture and clears the selection if it was active.
func (s *semesterService) DeleteLecture(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Lecture.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrLectureNotFound)
	}
	s.logger.Info("lecture deleted", zap.String("lecture_id", id))
	return nil
}

func (s *semesterService) assignSystemIDs(lec *model.Lecture) {
	for i := range lec.Systems {
		if lec.Systems[i].ID == "" {
			lec.Systems[i].ID = s.ids.NewID(idgen.PrefixSystem)
		}
	}
}

// ────────────────────── active lecture ──────────────────────

// SetActiveLecture stores the selection without checking that the lecture exists.
// An id that resolves to nothing reads as no active lecture.
func (s *semesterService) SetActiveLecture(ctx context.Context, id string) error {
	return s.repo.Lecture.SetActive(ctx, id)
}

func (s *semesterService) ClearActiveLecture(ctx context.Context) error {
	return s.repo.Lecture.ClearActive(ctx)
}

func (s *semesterService) ActiveLecture(ctx context.Context) (*model.Lecture, error) {
	id, ok := s.repo.Lecture.ActiveID(ctx)
	if !ok {
		return nil, ErrNoActiveLecture
	}
	lec, err := s.repo.Lecture.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrNoActiveLecture)
	}
	return lec, nil
}

// ────────────────────── sheets of the active lecture ──────────────────────

// AddSheetToActiveLecture appends sheet under a fresh id. Points of systems the
// lecture does not have are dropped.
func (s *semesterService) AddSheetToActiveLecture(ctx context.Context, sheet *model.Sheet) (*model.Sheet, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lec, err := s.ActiveLecture(ctx)
	if err != nil {
		return nil, err
	}

	added := sheet.Clone()
	added.ID = s.ids.NewID(idgen.PrefixSheet)
	added.Date = model.SheetDate(added.Date)
	lec.Sheets = append(lec.Sheets, added)
	lec.PruneSheetPoints()

	if err := s.repo.Lecture.Update(ctx, lec); err != nil {
		return nil, mapNotFound(err, ErrNoActiveLecture)
	}

	s.logger.Debug("sheet added", zap.String("lecture_id", lec.ID), zap.String("sheet_id", added.ID))
	stored := lec.Sheets[len(lec.Sheets)-1]
	return &stored, nil
}

// EditSheetOfActiveLecture replaces the sheet with the same id.
func (s *semesterService) EditSheetOfActiveLecture(ctx context.Context, sheet *model.Sheet) (*model.Sheet, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lec, err := s.ActiveLecture(ctx)
	if err != nil {
		return nil, err
	}
	i := lec.SheetIndex(sheet.ID)
	if i < 0 {
		return nil, ErrSheetNotFound
	}

	lec.Sheets[i] = sheet.Clone()
	lec.Sheets[i].Date = model.SheetDate(sheet.Date)
	lec.PruneSheetPoints()

	if err := s.repo.Lecture.Update(ctx, lec); err != nil {
		return nil, mapNotFound(err, ErrNoActiveLecture)
	}

	s.logger.Debug("sheet edited", zap.String("lecture_id", lec.ID), zap.String("sheet_id", sheet.ID))
	stored := lec.Sheets[i]
	return &stored, nil
}

func (s *semesterService) RemoveSheetFromActiveLecture(ctx context.Context, sheetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lec, err := s.ActiveLecture(ctx)
	if err != nil {
		return err
	}
	i := lec.SheetIndex(sheetID)
	if i < 0 {
		return ErrSheetNotFound
	}
	lec.Sheets = append(lec.Sheets[:i], lec.Sheets[i+1:]...)

	if err := s.repo.Lecture.Update(ctx, lec); err != nil {
		return mapNotFound(err, ErrNoActiveLecture)
	}

	s.logger.Debug("sheet removed", zap.String("lecture_id", lec.ID), zap.String("sheet_id", sheetID))
	return nil
}

// ────────────────────── queries ──────────────────────

// ActiveLecturePointsOfSystem sums the raw points recorded for systemID. A system
// without entries sums to {0,0}.
func (s *semesterService) ActiveLecturePointsOfSystem(ctx context.Context, systemID string) (model.Points, error) {
	lec, err := s.ActiveLecture(ctx)
	if err != nil {
		return model.Points{}, err
	}

	var sum model.Points
	for i := range lec.Sheets {
		if p, ok := lec.Sheets[i].PointsOf(systemID); ok {
			sum = sum.Add(p)
		}
	}
	return sum, nil
}

// ActiveLectureLastSheetNr highest sheet number, 0 when there are no sheets.
func (s *semesterService) ActiveLectureLastSheetNr(ctx context.Context) (int, error) {
	lec, err := s.ActiveLecture(ctx)
	if err != nil {
		return 0, err
	}

	last := 0
	for i := range lec.Sheets {
		if lec.Sheets[i].SheetNr > last {
			last = lec.Sheets[i].SheetNr
		}
	}
	return last, nil
}

func (s *semesterService) ActiveLecturePresentationPoints(ctx context.Context) (model.Points, error) {
	lec, err := s.ActiveLecture(ctx)
	if err != nil {
		return model.Points{}, err
	}
	p, ok := projection.PresentationProgress(lec)
	if !ok {
		return model.Points{}, ErrNoPresentationRequirement
	}
	return p, nil
}

// ────────────────────── semester data ──────────────────────

func (s *semesterService) DataAsJSON(ctx context.Context) ([]byte, error) {
	lectures, err := s.repo.Lecture.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := storage.Encode(lectures)
	if err != nil {
		s.logger.Error("failed to encode semester", zap.Error(err))
		return nil, err
	}
	return data, nil
}

// LoadDataFromJSON replaces every lecture with the decoded data and clears the
// selection. Invalid data leaves the current semester untouched.
func (s *semesterService) LoadDataFromJSON(ctx context.Context, data []byte) error {
	lectures, err := storage.Decode(data)
	if err != nil {
		s.logger.Warn("rejected semester data", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Lecture.ReplaceAll(ctx, lectures); err != nil {
		s.logger.Error("failed to replace lectures", zap.Error(err))
		return err
	}
	s.logger.Info("semester loaded", zap.Int("lectures", len(lectures)))
	return nil
}

// NewSemester drops every lecture and the selection.
func (s *semesterService) NewSemester(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Lecture.ReplaceAll(ctx, nil); err != nil {
		return err
	}
	s.logger.Info("new semester started")
	return nil
}

func (s *semesterService) SaveSemester(ctx context.Context, path string) error {
	data, err := s.DataAsJSON(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Save(path, data); err != nil {
		s.logger.Error("failed to save semester", zap.String("path", path), zap.Error(err))
		return err
	}
	s.logger.Info("semester saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func (s *semesterService) LoadSemester(ctx context.Context, path string) error {
	data, err := s.store.Load(path)
	if err != nil {
		s.logger.Error("failed to read semester file", zap.String("path", path), zap.Error(err))
		return err
	}
	if err := s.LoadDataFromJSON(ctx, data); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// mapNotFound translates the repository's not-found into a service error.
func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
