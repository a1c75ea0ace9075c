package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/visionafrica/debate-portal/internal/models"
)

const registrationColumns = `id, reg_number, school_name, coach_name, email, phone, address, state, reason, logo_path, receipt_path, status, date_registered, updated_at`

// RegistrationRepository provides database access for registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository creates a new instance of RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// NextRegistrationNumber draws the next value of the registration number sequence.
func (r *RegistrationRepository) NextRegistrationNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT nextval('registration_number_seq')`); err != nil {
		return 0, fmt.Errorf("next registration number: %w", err)
	}
	return n, nil
}

// ExistsByEmail reports whether a registration uses the given (normalised) email.
func (r *RegistrationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM registrations WHERE email = $1)`, email); err != nil {
		return false, fmt.Errorf("check registration email: %w", err)
	}
	return exists, nil
}

// Create inserts a registration. ID and timestamps are assigned when empty.
// The driver error stays in the chain so callers can match *pq.Error codes.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reg.DateRegistered.IsZero() {
		reg.DateRegistered = now
	}
	reg.UpdatedAt = reg.DateRegistered
	if reg.Status == "" {
		reg.Status = models.StatusPending
	}

	const query = `INSERT INTO registrations (` + registrationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(ctx, query,
		reg.ID, reg.RegNumber, reg.SchoolName, reg.CoachName, reg.Email, reg.Phone, reg.Address,
		reg.State, reg.Reason, reg.LogoPath, reg.ReceiptPath, reg.Status, reg.DateRegistered, reg.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// List returns every registration, newest first.
func (r *RegistrationRepository) List(ctx context.Context) ([]models.Registration, error) {
	const query = `SELECT ` + registrationColumns + ` FROM registrations ORDER BY date_registered DESC, reg_number DESC`
	regs := make([]models.Registration, 0)
	if err := r.db.SelectContext(ctx, &regs, query); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// GetByID returns a registration by identifier.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	const query = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1 LIMIT 1`
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

// FindByEmail returns the registration using email.
func (r *RegistrationRepository) FindByEmail(ctx context.Context, email string) (*models.Registration, error) {
	const query = `SELECT ` + registrationColumns + ` FROM registrations WHERE email = $1 LIMIT 1`
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration by email: %w", err)
	}
	return &reg, nil
}

// ConfirmPayment moves a registration to Confirmed unless it already is.
// It reports false when no row changed.
func (r *RegistrationRepository) ConfirmPayment(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2`
	res, err := r.db.ExecContext(ctx, query, id, models.StatusConfirmed, at)
	if err != nil {
		return false, fmt.Errorf("confirm payment: %w", err)
	}
	return affected(res)
}

// UpdateStatus sets the status of a registration. It reports false when the row is absent.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, at time.Time) (bool, error) {
	const query = `UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return false, fmt.Errorf("update registration status: %w", err)
	}
	return affected(res)
}

// Delete removes a registration and returns the file references it held.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) (*models.RegistrationFiles, error) {
	const query = `DELETE FROM registrations WHERE id = $1 RETURNING id, logo_path, receipt_path`
	var files models.RegistrationFiles
	if err := r.db.GetContext(ctx, &files, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("delete registration: %w", err)
	}
	return &files, nil
}

// ListFileRefs returns the stored file references of every registration.
func (r *RegistrationRepository) ListFileRefs(ctx context.Context) ([]models.RegistrationFiles, error) {
	const query = `SELECT id, logo_path, receipt_path FROM registrations`
	refs := make([]models.RegistrationFiles, 0)
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("list registration files: %w", err)
	}
	return refs, nil
}

// UpdateFilePaths rewrites the stored file references of a registration.
func (r *RegistrationRepository) UpdateFilePaths(ctx context.Context, files models.RegistrationFiles) error {
	const query = `UPDATE registrations SET logo_path = $2, receipt_path = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, files.ID, files.LogoPath, files.ReceiptPath); err != nil {
		return fmt.Errorf("update registration files: %w", err)
	}
	return nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
