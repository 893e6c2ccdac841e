package service

import (
	"go.uber.org/zap"

	"github.com/Dudrie/scheinprogramm.releases-sub000/config"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/repository"
	"github.com/Dudrie/scheinprogramm.releases-sub000/internal/storage"
	"github.com/Dudrie/scheinprogramm.releases-sub000/pkg/idgen"
)

// Service entry point to all services.
type Service struct {
	Semester SemesterService
	Overview OverviewService
	Export   ExportService
}

// NewService wires the services around one repository.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	ids *idgen.Generator,
	store *storage.FileStore,
	logger *zap.Logger,
) *Service {
	semester := NewSemesterService(repo, ids, store, logger)
	return &Service{
		Semester: semester,
		Overview: NewOverviewService(repo, semester, logger),
		Export:   NewExportService(repo, &cfg.Export, logger),
	}
}
