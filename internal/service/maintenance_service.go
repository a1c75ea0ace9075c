package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
	"github.com/visionafrica/debate-portal/pkg/storage"
)

type fileRefStore interface {
	ListFileRefs(ctx context.Context) ([]models.RegistrationFiles, error)
	UpdateFilePaths(ctx context.Context, files models.RegistrationFiles) error
}

type uploadInventory interface {
	List() ([]storage.FileInfo, error)
	Delete(ref string) error
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// MaintenanceService repairs stored file references and cleans the uploads directory.
type MaintenanceService struct {
	repo    fileRefStore
	uploads uploadInventory
	db      pinger
	cache   *CacheService
	grace   time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewMaintenanceService constructs the service. Files younger than grace are
// never treated as orphans so in-flight registrations are left alone.
func NewMaintenanceService(repo fileRefStore, uploads uploadInventory, db pinger, cache *CacheService, grace time.Duration, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if grace <= 0 {
		grace = time.Hour
	}
	return &MaintenanceService{repo: repo, uploads: uploads, db: db, cache: cache, grace: grace, logger: logger, now: time.Now}
}

// NormalizeFilePaths rewrites every stored reference into "uploads/<file>" and
// returns how many registrations changed.
func (s *MaintenanceService) NormalizeFilePaths(ctx context.Context) (int, error) {
	refs, err := s.repo.ListFileRefs(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list file references")
	}
	updated := 0
	for _, ref := range refs {
		fixed := models.RegistrationFiles{
			ID:          ref.ID,
			LogoPath:    storage.Normalize(ref.LogoPath),
			ReceiptPath: storage.Normalize(ref.ReceiptPath),
		}
		if fixed == ref {
			continue
		}
		if err := s.repo.UpdateFilePaths(ctx, fixed); err != nil {
			return updated, appErrors.Internal(err, "failed to update file references")
		}
		updated++
		s.logger.Info("normalized file references", zap.String("id", ref.ID), zap.String("logo", fixed.LogoPath), zap.String("receipt", fixed.ReceiptPath))
	}
	if updated > 0 {
		s.cache.Invalidate(ctx, cachePatternRegistration)
	}
	return updated, nil
}

// SweepOrphanUploads finds files no registration references and, unless dryRun,
// deletes them.
func (s *MaintenanceService) SweepOrphanUploads(ctx context.Context, dryRun bool) (*dto.SweepResult, error) {
	refs, err := s.repo.ListFileRefs(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list file references")
	}
	referenced := make(map[string]struct{}, len(refs)*2)
	for _, ref := range refs {
		for _, p := range []string{ref.LogoPath, ref.ReceiptPath} {
			if name := storage.BaseName(p); name != "" {
				referenced[name] = struct{}{}
			}
		}
	}

	files, err := s.uploads.List()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list uploads")
	}

	cutoff := s.now().Add(-s.grace)
	result := &dto.SweepResult{Scanned: len(files), Orphans: make([]string, 0), DryRun: dryRun}
	for _, file := range files {
		if _, ok := referenced[file.Name]; ok || file.ModTime.After(cutoff) {
			continue
		}
		result.Orphans = append(result.Orphans, file.Name)
		if dryRun {
			continue
		}
		if err := s.uploads.Delete(file.Name); err != nil {
			s.logger.Warn("failed to delete orphan upload", zap.String("file", file.Name), zap.Error(err))
			continue
		}
		result.Deleted++
	}
	sort.Strings(result.Orphans)
	s.logger.Info("orphan sweep finished", zap.Int("scanned", result.Scanned), zap.Int("orphans", len(result.Orphans)), zap.Int("deleted", result.Deleted), zap.Bool("dry_run", dryRun))
	return result, nil
}

// CheckDatabase pings the store.
func (s *MaintenanceService) CheckDatabase(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "database unreachable")
	}
	return nil
}
