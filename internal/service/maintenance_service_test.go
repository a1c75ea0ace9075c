package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
	"github.com/visionafrica/debate-portal/pkg/storage"
)

type fakeFileRefStore struct {
	refs    []models.RegistrationFiles
	updates []models.RegistrationFiles
	err     error
}

func (f *fakeFileRefStore) ListFileRefs(ctx context.Context) ([]models.RegistrationFiles, error) {
	return f.refs, f.err
}

func (f *fakeFileRefStore) UpdateFilePaths(ctx context.Context, files models.RegistrationFiles) error {
	f.updates = append(f.updates, files)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestNormalizeFilePaths(t *testing.T) {
	store := &fakeFileRefStore{refs: []models.RegistrationFiles{
		{ID: "1", LogoPath: "uploads/1-logo.png", ReceiptPath: "uploads/1-r.pdf"},
		{ID: "2", LogoPath: `C:\srv\app\uploads\2-logo.png`, ReceiptPath: "/uploads/2-r.pdf"},
		{ID: "3", LogoPath: "http://old-host:5000/uploads/3-logo.png", ReceiptPath: ""},
	}}
	svc := NewMaintenanceService(store, nil, nil, nil, time.Hour, zap.NewNop())

	updated, err := svc.NormalizeFilePaths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, []models.RegistrationFiles{
		{ID: "2", LogoPath: "uploads/2-logo.png", ReceiptPath: "uploads/2-r.pdf"},
		{ID: "3", LogoPath: "uploads/3-logo.png", ReceiptPath: ""},
	}, store.updates)
}

func TestNormalizeFilePathsListFailure(t *testing.T) {
	svc := NewMaintenanceService(&fakeFileRefStore{err: errors.New("db")}, nil, nil, nil, time.Hour, zap.NewNop())
	_, err := svc.NormalizeFilePaths(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestSweepOrphanUploads(t *testing.T) {
	dir := t.TempDir()
	uploads, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{"1-logo.png", "1-r.pdf", "9-stray.png", "8-stray.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(path, old, old))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10-fresh.png"), []byte("x"), 0o644))

	store := &fakeFileRefStore{refs: []models.RegistrationFiles{
		{ID: "1", LogoPath: "uploads/1-logo.png", ReceiptPath: "http://localhost:5000/uploads/1-r.pdf"},
	}}
	svc := NewMaintenanceService(store, uploads, nil, nil, time.Hour, zap.NewNop())

	dry, err := svc.SweepOrphanUploads(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 5, dry.Scanned)
	assert.Equal(t, []string{"8-stray.pdf", "9-stray.png"}, dry.Orphans)
	assert.Equal(t, 0, dry.Deleted)
	assert.Len(t, dirEntries(t, dir), 5)

	result, err := svc.SweepOrphanUploads(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deleted)
	assert.ElementsMatch(t, []string{"1-logo.png", "1-r.pdf", "10-fresh.png"}, dirEntries(t, dir))
}

func TestCheckDatabase(t *testing.T) {
	ok := NewMaintenanceService(nil, nil, fakePinger{}, nil, 0, nil)
	assert.NoError(t, ok.CheckDatabase(context.Background()))

	down := NewMaintenanceService(nil, nil, fakePinger{err: errors.New("dial tcp: refused")}, nil, 0, nil)
	err := down.CheckDatabase(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}
