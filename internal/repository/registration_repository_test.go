package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionafrica/debate-portal/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var registrationRowColumns = []string{"id", "reg_number", "school_name", "coach_name", "email", "phone", "address", "state", "reason", "logo_path", "receipt_path", "status", "date_registered", "updated_at"}

func TestNextRegistrationNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('registration_number_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(17)))

	n, err := repo.NextRegistrationNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM registrations WHERE email = $1)")).
		WithArgs("coach@school.ng").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "coach@school.ng")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRegistrationAssignsDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("INSERT INTO registrations").WillReturnResult(sqlmock.NewResult(1, 1))

	reg := &models.Registration{RegNumber: "VARSDB-2026-0001", SchoolName: "Kings College", Email: "coach@school.ng"}
	require.NoError(t, repo.Create(context.Background(), reg))
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, models.StatusPending, reg.Status)
	assert.False(t, reg.DateRegistered.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRegistrationKeepsDriverError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("INSERT INTO registrations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_email_key"})

	err := repo.Create(context.Background(), &models.Registration{Email: "coach@school.ng"})
	require.Error(t, err)
	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("23505"), pqErr.Code)
}

func TestListRegistrationsNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(registrationRowColumns).
		AddRow("b", "VARSDB-2026-0002", "B", "Coach B", "b@x.ng", "0800000002", "Addr", "Lagos", "Fun", "uploads/2-b.png", "uploads/2-b.pdf", "Pending", now, now).
		AddRow("a", "VARSDB-2026-0001", "A", "Coach A", "a@x.ng", "0800000001", "Addr", "Oyo", "Fun", "", "", "Approved", now.Add(-time.Hour), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations ORDER BY date_registered DESC, reg_number DESC")).WillReturnRows(rows)

	regs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "b", regs[0].ID)
	assert.Equal(t, models.StatusApproved, regs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRegistrationNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestConfirmPaymentConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2")).
		WithArgs("r1", models.StatusConfirmed, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status <> $2")).
		WithArgs("r1", models.StatusConfirmed, at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.ConfirmPayment(context.Background(), "r1", at)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ConfirmPayment(context.Background(), "r1", at)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("r1", models.StatusRejected, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.UpdateStatus(context.Background(), "r1", models.StatusRejected, at)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRegistrationReturnsFiles(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM registrations WHERE id = $1 RETURNING id, logo_path, receipt_path")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "logo_path", "receipt_path"}).AddRow("r1", "uploads/1-a.png", "uploads/1-a.pdf"))

	files, err := repo.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "uploads/1-a.png", files.LogoPath)
	assert.Equal(t, "uploads/1-a.pdf", files.ReceiptPath)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM registrations")).WithArgs("r2").WillReturnError(sql.ErrNoRows)
	_, err = repo.Delete(context.Background(), "r2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFilePaths(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, logo_path, receipt_path FROM registrations")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "logo_path", "receipt_path"}).AddRow("r1", "/uploads/1-a.png", ""))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET logo_path = $2, receipt_path = $3 WHERE id = $1")).
		WithArgs("r1", "uploads/1-a.png", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	refs, err := repo.ListFileRefs(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)

	refs[0].LogoPath = "uploads/1-a.png"
	require.NoError(t, repo.UpdateFilePaths(context.Background(), refs[0]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRegistrationByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE email = $1 LIMIT 1")).
		WithArgs("coach@school.ng").
		WillReturnRows(sqlmock.NewRows(registrationRowColumns).
			AddRow("r1", "VARSDB-2026-0001", "A", "Coach", "coach@school.ng", "0800000001", "Addr", "Oyo", "Fun", "", "", "Confirmed", now, now))

	reg, err := repo.FindByEmail(context.Background(), "coach@school.ng")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, reg.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
