package service

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
	"github.com/visionafrica/debate-portal/pkg/jobs"
	"github.com/visionafrica/debate-portal/pkg/mailer"
	appValidator "github.com/visionafrica/debate-portal/pkg/validator"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	mailTeam = "Vision Africa Debate Team"

	subjectPaymentConfirmation = "Payment Confirmation - School Debate Registration"
	subjectStatusUpdate        = "Registration Status Update - School Debate Registration"

	jobTypePaymentConfirmation = "email.payment_confirmation"
	jobTypeStatusUpdate        = "email.status_update"
)

// ErrMailQueueUnavailable is returned when no queue has been attached.
var ErrMailQueueUnavailable = errors.New("mail queue unavailable")

type mailQueue interface {
	EnqueueContext(ctx context.Context, job jobs.Job) error
}

type registrationByEmail interface {
	FindByEmail(ctx context.Context, email string) (*models.Registration, error)
}

// NotificationConfig tunes mail dispatch.
type NotificationConfig struct {
	EnqueueTimeout    time.Duration
	MaxAttachmentSize int64
	// Configured is false when SMTP credentials are absent and delivery is enabled.
	Configured bool
}

// NotificationService renders and dispatches emails to schools.
type NotificationService struct {
	sender        mailer.Sender
	queue         mailQueue
	registrations registrationByEmail
	audit         auditLogger
	templates     *template.Template
	validator     *validator.Validate
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           NotificationConfig
}

// NewNotificationService parses the embedded templates and returns the service.
// Attach a queue with UseQueue before sending status emails.
func NewNotificationService(sender mailer.Sender, registrations registrationByEmail, audit auditLogger, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg NotificationConfig) (*NotificationService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = appValidator.New()
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 2 * time.Second
	}
	if cfg.MaxAttachmentSize <= 0 {
		cfg.MaxAttachmentSize = 5 * 1024 * 1024
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &NotificationService{
		sender:        sender,
		registrations: registrations,
		audit:         audit,
		templates:     tmpl,
		validator:     validate,
		metrics:       metrics,
		logger:        logger,
		cfg:           cfg,
	}, nil
}

// UseQueue attaches the queue used for asynchronous delivery.
func (s *NotificationService) UseQueue(q mailQueue) {
	s.queue = q
}

// HandleJob delivers a queued message. It is the mail queue's job handler.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.RecordEmail(EmailResultFailed)
		return err
	}
	s.metrics.RecordEmail(EmailResultSent)
	s.logger.Info("email delivered", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.String("to", msg.To))
	return nil
}

// OnJobFailure records a message that exhausted its retries.
func (s *NotificationService) OnJobFailure(job jobs.Job, err error) {
	s.metrics.RecordEmail(EmailResultDropped)
	s.logger.Error("email dropped", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err))
}

// SendPaymentConfirmation queues the payment confirmation email.
func (s *NotificationService) SendPaymentConfirmation(ctx context.Context, reg *models.Registration) error {
	body, err := s.render("payment_confirmation.html", schoolTemplateData(reg, reg.Status))
	if err != nil {
		return err
	}
	return s.enqueue(ctx, jobTypePaymentConfirmation, mailer.Message{To: reg.Email, Subject: subjectPaymentConfirmation, HTMLBody: body})
}

// SendStatusUpdate queues the status change email for status.
func (s *NotificationService) SendStatusUpdate(ctx context.Context, reg *models.Registration, status models.RegistrationStatus) error {
	body, err := s.render("status_update.html", schoolTemplateData(reg, status))
	if err != nil {
		return err
	}
	return s.enqueue(ctx, jobTypeStatusUpdate, mailer.Message{To: reg.Email, Subject: subjectStatusUpdate, HTMLBody: body})
}

// SendAdminEmail delivers a free-form admin message synchronously. When the
// recipient is a registered school its registration date and status are appended.
func (s *NotificationService) SendAdminEmail(ctx context.Context, req dto.SendEmailRequest, actor Actor) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appValidator.Describe(err))
	}
	if !s.cfg.Configured {
		return appErrors.Clone(appErrors.ErrInternal, "SMTP credentials missing")
	}

	data := adminMessageData{
		Team:           mailTeam,
		Greeting:       mailboxName(req.Email),
		Body:           nl2br(req.Message),
		DateRegistered: time.Now().UTC().Format("2006-01-02"),
		Status:         string(models.StatusPending),
	}
	if s.registrations != nil {
		reg, err := s.registrations.FindByEmail(ctx, req.Email)
		switch {
		case err == nil:
			data.DateRegistered = reg.DateRegistered.UTC().Format("2006-01-02")
			data.Status = string(reg.Status)
		case errors.Is(err, sql.ErrNoRows):
		default:
			s.logger.Warn("lookup recipient registration failed", zap.Error(err))
		}
	}
	data.StatusColor = statusColor(models.RegistrationStatus(data.Status))

	body, err := s.render("admin_message.html", data)
	if err != nil {
		return err
	}
	msg := mailer.Message{To: req.Email, Subject: req.Subject, HTMLBody: body}
	if req.Attachment != nil {
		att, err := s.readAttachment(req.Attachment)
		if err != nil {
			return err
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.RecordEmail(EmailResultFailed)
		return mapSendError(err)
	}
	s.metrics.RecordEmail(EmailResultSent)
	s.recordSend(ctx, actor, msg)
	return nil
}

func (s *NotificationService) recordSend(ctx context.Context, actor Actor, msg mailer.Message) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"to": msg.To, "subject": msg.Subject, "attachments": len(msg.Attachments)})
	entry := &models.AuditLog{
		ID:        uuid.NewString(),
		Action:    models.AuditActionSendEmail,
		Resource:  "email",
		Payload:   payload,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if actor.AdminID != "" {
		adminID := actor.AdminID
		entry.AdminID = &adminID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record email audit log", zap.Error(err))
	}
}

func (s *NotificationService) readAttachment(file *dto.FileUpload) (mailer.Attachment, error) {
	if file.Size > s.cfg.MaxAttachmentSize {
		return mailer.Attachment{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment exceeds %d bytes limit", s.cfg.MaxAttachmentSize))
	}
	data, err := io.ReadAll(io.LimitReader(file.Content, s.cfg.MaxAttachmentSize+1))
	if err != nil {
		return mailer.Attachment{}, appErrors.Internal(err, "failed to read attachment")
	}
	if int64(len(data)) > s.cfg.MaxAttachmentSize {
		return mailer.Attachment{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment exceeds %d bytes limit", s.cfg.MaxAttachmentSize))
	}
	return mailer.Attachment{Filename: file.Filename, Data: data}, nil
}

func (s *NotificationService) enqueue(ctx context.Context, jobType string, msg mailer.Message) error {
	if s.queue == nil {
		return ErrMailQueueUnavailable
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EnqueueTimeout)
	defer cancel()
	return s.queue.EnqueueContext(ctx, jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: msg})
}

func (s *NotificationService) render(name string, data interface{}) (string, error) {
	buf := new(bytes.Buffer)
	if err := s.templates.ExecuteTemplate(buf, name, data); err != nil {
		return "", appErrors.Internal(err, "failed to render email")
	}
	return buf.String(), nil
}

func mapSendError(err error) error {
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		return appErrors.Clone(appErrors.ErrInternal, "SMTP credentials missing")
	case errors.Is(err, mailer.ErrAuth):
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Mail server rejected credentials")
	case errors.Is(err, mailer.ErrUnreachable):
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "Mail server not reachable")
	default:
		return appErrors.Internal(err, "Server error while sending email.")
	}
}

type schoolData struct {
	Team        string
	SchoolName  string
	RegNumber   string
	Status      string
	StatusColor string
}

type adminMessageData struct {
	Team           string
	Greeting       string
	Body           template.HTML
	DateRegistered string
	Status         string
	StatusColor    string
}

func schoolTemplateData(reg *models.Registration, status models.RegistrationStatus) schoolData {
	return schoolData{
		Team:        mailTeam,
		SchoolName:  reg.SchoolName,
		RegNumber:   reg.RegNumber,
		Status:      string(status),
		StatusColor: statusColor(status),
	}
}

func statusColor(status models.RegistrationStatus) string {
	switch status {
	case models.StatusApproved:
		return "green"
	case models.StatusRejected, models.StatusDisapproved:
		return "red"
	default:
		return "orange"
	}
}

func mailboxName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// nl2br escapes message and turns newlines into <br>.
func nl2br(message string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(message, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
