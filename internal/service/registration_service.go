package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/dto"
	"github.com/visionafrica/debate-portal/internal/models"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
	"github.com/visionafrica/debate-portal/pkg/storage"
	appValidator "github.com/visionafrica/debate-portal/pkg/validator"
)

const pqUniqueViolation = pq.ErrorCode("23505")

var (
	logoMIMEs    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	receiptMIMEs = append([]string{"application/pdf"}, logoMIMEs...)
)

type registrationStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context) ([]models.Registration, error)
	GetByID(ctx context.Context, id string) (*models.Registration, error)
}

type uploadStorage interface {
	SaveUpload(originalName string, r io.Reader) (string, error)
	Delete(ref string) error
}

type regNumberIssuer interface {
	Next(ctx context.Context) (string, error)
}

// RegistrationServiceConfig holds upload limits and the public URL base.
type RegistrationServiceConfig struct {
	MaxFileSize   int64
	PublicBaseURL string
}

// RegistrationService accepts public registrations and serves them back.
type RegistrationService struct {
	repo      registrationStore
	storage   uploadStorage
	numbers   regNumberIssuer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RegistrationServiceConfig
}

// NewRegistrationService constructs the service with defaults.
func NewRegistrationService(repo registrationStore, storage uploadStorage, numbers regNumberIssuer, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg RegistrationServiceConfig) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = appValidator.New()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	return &RegistrationService{
		repo:      repo,
		storage:   storage,
		numbers:   numbers,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Register validates and stores a new registration with its two files. Files
// written before a failed insert are removed again.
func (s *RegistrationService) Register(ctx context.Context, req dto.RegisterRequest, files dto.RegistrationFiles) (*models.Registration, error) {
	req = normalizeRegisterRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appValidator.Describe(err))
	}
	if err := s.checkFile("logo", files.Logo, logoMIMEs); err != nil {
		return nil, err
	}
	if err := s.checkFile("receipt", files.Receipt, receiptMIMEs); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check registration")
	}
	if exists {
		return nil, appErrors.ErrAlreadyRegistered
	}

	regNumber, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}

	logoRef, err := s.save(files.Logo)
	if err != nil {
		return nil, err
	}
	receiptRef, err := s.save(files.Receipt)
	if err != nil {
		s.discard(logoRef)
		return nil, err
	}

	reg := &models.Registration{
		RegNumber:   regNumber,
		SchoolName:  req.SchoolName,
		CoachName:   req.CoachName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		State:       req.State,
		Reason:      req.Reason,
		LogoPath:    logoRef,
		ReceiptPath: receiptRef,
		Status:      models.StatusPending,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		s.discard(logoRef, receiptRef)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && strings.Contains(pqErr.Constraint, "email") {
			return nil, appErrors.ErrAlreadyRegistered
		}
		return nil, appErrors.Internal(err, "failed to create registration")
	}

	s.cache.Invalidate(ctx, cachePatternRegistration)
	s.metrics.RecordRegistration()
	s.logger.Info("registration created", zap.String("id", reg.ID), zap.String("reg_number", reg.RegNumber))
	return s.present(reg), nil
}

// List returns every registration newest first.
func (s *RegistrationService) List(ctx context.Context) ([]models.Registration, error) {
	var regs []models.Registration
	if !s.cache.Get(ctx, cacheKeyRegistrationList, &regs) {
		var err error
		regs, err = s.repo.List(ctx)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list registrations")
		}
		s.cache.Set(ctx, cacheKeyRegistrationList, regs)
	}
	out := make([]models.Registration, len(regs))
	for i := range regs {
		out[i] = *s.present(&regs[i])
	}
	return out, nil
}

// Get returns one registration.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := loadRegistration(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.present(reg), nil
}

func (s *RegistrationService) checkFile(field string, file *dto.FileUpload, allowed []string) error {
	if file == nil || file.Content == nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s file is required", field))
	}
	if file.Size > s.cfg.MaxFileSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds %d bytes limit", field, s.cfg.MaxFileSize))
	}
	mimeType, err := detectMime(file.Content)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: %v", field, err))
	}
	for _, mt := range allowed {
		if mt == mimeType {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s has unsupported type %s", field, mimeType))
}

func (s *RegistrationService) save(file *dto.FileUpload) (string, error) {
	ref, err := s.storage.SaveUpload(file.Filename, io.LimitReader(file.Content, s.cfg.MaxFileSize))
	if err != nil {
		return "", appErrors.Internal(err, "failed to store upload")
	}
	return ref, nil
}

func (s *RegistrationService) discard(refs ...string) {
	for _, ref := range refs {
		if err := s.storage.Delete(ref); err != nil {
			s.logger.Warn("failed to remove upload after aborted registration", zap.String("file", ref), zap.Error(err))
		}
	}
}

func (s *RegistrationService) present(reg *models.Registration) *models.Registration {
	return presentRegistration(s.cfg.PublicBaseURL, reg)
}

// presentRegistration returns a copy with file references rewritten to public URLs.
func presentRegistration(baseURL string, reg *models.Registration) *models.Registration {
	if reg == nil {
		return nil
	}
	out := *reg
	out.LogoPath = storage.PublicURL(baseURL, reg.LogoPath)
	out.ReceiptPath = storage.PublicURL(baseURL, reg.ReceiptPath)
	return &out
}

type registrationGetter interface {
	GetByID(ctx context.Context, id string) (*models.Registration, error)
}

func loadRegistration(ctx context.Context, repo registrationGetter, id string) (*models.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Registration not found")
	}
	reg, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Registration not found")
		}
		return nil, appErrors.Internal(err, "failed to load registration")
	}
	return reg, nil
}

func normalizeRegisterRequest(req dto.RegisterRequest) dto.RegisterRequest {
	req.SchoolName = strings.TrimSpace(req.SchoolName)
	req.CoachName = strings.TrimSpace(req.CoachName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.State = strings.TrimSpace(req.State)
	req.Reason = strings.TrimSpace(req.Reason)
	return req
}

// detectMime sniffs the first 512 bytes and rewinds the stream.
func detectMime(content io.ReadSeeker) (string, error) {
	header := make([]byte, 512)
	n, err := io.ReadFull(content, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read file: %w", err)
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind file: %w", err)
	}
	if n == 0 {
		return "", errors.New("empty file")
	}
	mimeType := http.DetectContentType(header[:n])
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType, nil
}
