package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionafrica/debate-portal/internal/models"
)

func TestFindAdminByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
		AddRow("a1", "admin@visionafrica.org", "hash", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, created_at FROM admins WHERE username = $1 LIMIT 1")).
		WithArgs("admin@visionafrica.org").
		WillReturnRows(rows)

	admin, err := repo.FindByUsername(context.Background(), "admin@visionafrica.org")
	require.NoError(t, err)
	assert.Equal(t, "a1", admin.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAdminIfAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec("INSERT INTO admins .* ON CONFLICT \\(username\\) DO NOTHING").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO admins").WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateIfAbsent(context.Background(), &models.Admin{Username: "admin", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(context.Background(), &models.Admin{Username: "admin", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	adminID := "a1"
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "a1", models.AuditActionDelete, models.AuditResourceRegistration, sqlmock.AnyArg(), `{"regNumber":"VARSDB-2026-0001"}`, "127.0.0.1", "test", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateAuditLog(context.Background(), &models.AuditLog{
		AdminID:   &adminID,
		Action:    models.AuditActionDelete,
		Resource:  models.AuditResourceRegistration,
		Payload:   []byte(`{"regNumber":"VARSDB-2026-0001"}`),
		IPAddress: "127.0.0.1",
		UserAgent: "test",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
