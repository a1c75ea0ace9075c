package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
)

const invalidStatusMessage = "Invalid status. Allowed: Pending, Confirmed, Approved, Rejected, Disapproved"

type statusStore interface {
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	ConfirmPayment(ctx context.Context, id string, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (*models.RegistrationFiles, error)
}

type fileRemover interface {
	Delete(ref string) error
}

type statusNotifier interface {
	SendPaymentConfirmation(ctx context.Context, reg *models.Registration) error
	SendStatusUpdate(ctx context.Context, reg *models.Registration, status models.RegistrationStatus) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Actor identifies the admin performing a mutation, for the audit trail.
type Actor struct {
	AdminID   string
	IP        string
	UserAgent string
}

// StatusService drives the registration lifecycle for admins.
type StatusService struct {
	repo     statusStore
	files    fileRemover
	notifier statusNotifier
	audit    auditLogger
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	baseURL  string
	now      func() time.Time
}

// NewStatusService constructs the lifecycle service.
func NewStatusService(repo statusStore, files fileRemover, notifier statusNotifier, audit auditLogger, cache *CacheService, metrics *MetricsService, logger *zap.Logger, publicBaseURL string) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		repo:     repo,
		files:    files,
		notifier: notifier,
		audit:    audit,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		baseURL:  publicBaseURL,
		now:      time.Now,
	}
}

// ConfirmPayment marks a registration Confirmed and queues the confirmation email.
// Confirming twice is rejected, including when two admins race.
func (s *StatusService) ConfirmPayment(ctx context.Context, id string, actor Actor) (*dto.RegistrationOutcome, error) {
	reg, err := loadRegistration(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if reg.Status == models.StatusConfirmed {
		return nil, appErrors.ErrAlreadyConfirmed
	}

	at := s.now().UTC()
	changed, err := s.repo.ConfirmPayment(ctx, id, at)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to confirm payment")
	}
	if !changed {
		if _, err := loadRegistration(ctx, s.repo, id); err != nil {
			return nil, err
		}
		return nil, appErrors.ErrAlreadyConfirmed
	}
	previous := reg.Status
	reg.Status = models.StatusConfirmed
	reg.UpdatedAt = at

	outcome := &dto.RegistrationOutcome{}
	if err := s.notifier.SendPaymentConfirmation(ctx, reg); err != nil {
		s.logger.Warn("failed to queue payment confirmation email", zap.String("id", id), zap.Error(err))
		outcome.Warn("Payment confirmed but the confirmation email could not be queued.")
	}

	s.afterMutation(ctx, reg.Status)
	s.record(ctx, actor, models.AuditActionConfirmPayment, id, map[string]interface{}{"from": previous, "to": reg.Status})
	outcome.Registration = presentRegistration(s.baseURL, reg)
	return outcome, nil
}

// UpdateStatus sets any of the five statuses. Every status except Pending
// notifies the school.
func (s *StatusService) UpdateStatus(ctx context.Context, id string, raw string, actor Actor) (*dto.RegistrationOutcome, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Status is required")
	}
	status := models.RegistrationStatus(raw)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, invalidStatusMessage)
	}

	reg, err := loadRegistration(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	changed, err := s.repo.UpdateStatus(ctx, id, status, at)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update status")
	}
	if !changed {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Registration not found")
	}
	previous := reg.Status
	reg.Status = status
	reg.UpdatedAt = at

	outcome := &dto.RegistrationOutcome{}
	if status.Notifies() {
		if err := s.notifier.SendStatusUpdate(ctx, reg, status); err != nil {
			s.logger.Warn("failed to queue status email", zap.String("id", id), zap.String("status", string(status)), zap.Error(err))
			outcome.Warn("Status updated but the notification email could not be queued.")
		}
	}

	s.afterMutation(ctx, status)
	s.record(ctx, actor, models.AuditActionStatusChange, id, map[string]interface{}{"from": previous, "to": status})
	outcome.Registration = presentRegistration(s.baseURL, reg)
	return outcome, nil
}

// Delete removes the record and then its files. File removal failures become
// warnings; a missing file is not a failure.
func (s *StatusService) Delete(ctx context.Context, id string, actor Actor) (*dto.RegistrationOutcome, error) {
	reg, err := loadRegistration(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	files, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Registration not found")
		}
		return nil, appErrors.Internal(err, "failed to delete registration")
	}

	outcome := &dto.RegistrationOutcome{}
	for _, ref := range []string{files.LogoPath, files.ReceiptPath} {
		if ref == "" {
			continue
		}
		if err := s.files.Delete(ref); err != nil {
			s.logger.Warn("failed to delete registration file", zap.String("id", id), zap.String("file", ref), zap.Error(err))
			outcome.Warn("Registration deleted but file " + ref + " could not be removed.")
		}
	}

	s.cache.Invalidate(ctx, cachePatternRegistration)
	s.record(ctx, actor, models.AuditActionDelete, id, map[string]interface{}{"regNumber": reg.RegNumber, "schoolName": reg.SchoolName})
	outcome.Registration = presentRegistration(s.baseURL, reg)
	return outcome, nil
}

func (s *StatusService) afterMutation(ctx context.Context, status models.RegistrationStatus) {
	s.cache.Invalidate(ctx, cachePatternRegistration)
	s.metrics.RecordStatusTransition(status)
}

func (s *StatusService) record(ctx context.Context, actor Actor, action, id string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		Action:     action,
		Resource:   models.AuditResourceRegistration,
		ResourceID: &id,
		Payload:    raw,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if actor.AdminID != "" {
		adminID := actor.AdminID
		entry.AdminID = &adminID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
