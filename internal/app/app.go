// Package app assembles the portal's services from configuration. Both the
// HTTP server and the portalctl tool build on it.
package app

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/visionafrica/debate-portal/internal/repository"
	"github.com/visionafrica/debate-portal/internal/service"
	"github.com/visionafrica/debate-portal/pkg/cache"
	"github.com/visionafrica/debate-portal/pkg/config"
	"github.com/visionafrica/debate-portal/pkg/database"
	"github.com/visionafrica/debate-portal/pkg/export"
	"github.com/visionafrica/debate-portal/pkg/jobs"
	"github.com/visionafrica/debate-portal/pkg/mailer"
	"github.com/visionafrica/debate-portal/pkg/storage"
	appValidator "github.com/visionafrica/debate-portal/pkg/validator"
)

// Container holds the wired dependencies of a running portal.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB    *sqlx.DB
	Redis *redis.Client

	Registrations *repository.RegistrationRepository
	Admins        *repository.AdminRepository
	Audit         *repository.AuditRepository

	Uploads   *storage.LocalStorage
	Sender    mailer.Sender
	MailQueue *jobs.Queue

	Metrics       *service.MetricsService
	Cache         *service.CacheService
	Registration  *service.RegistrationService
	Lifecycle     *service.StatusService
	Auth          *service.AuthService
	Notifications *service.NotificationService
	Exports       *service.ExportService
	Maintenance   *service.MaintenanceService
}

// New connects to the database, optionally migrates it, and builds every
// service. The mail queue is created but not started.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c := &Container{Config: cfg, Logger: logger, DB: db}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logger); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	c.Uploads, err = storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("prepare uploads dir: %w", err)
	}

	c.Registrations = repository.NewRegistrationRepository(db)
	c.Admins = repository.NewAdminRepository(db)
	c.Audit = repository.NewAuditRepository(db)

	c.Metrics = service.NewMetricsService()
	c.Cache = c.buildCache()

	validate := appValidator.New()

	c.Registration = service.NewRegistrationService(
		c.Registrations,
		c.Uploads,
		service.NewRegNumberGenerator(c.Registrations, cfg.RegNumber),
		c.Cache,
		c.Metrics,
		validate,
		logger.Named("registration"),
		service.RegistrationServiceConfig{
			MaxFileSize:   cfg.Uploads.MaxFileSizeBytes,
			PublicBaseURL: cfg.PublicBaseURL,
		},
	)

	c.Auth = service.NewAuthService(c.Admins, c.Audit, validate, logger.Named("auth"), service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})

	c.Sender = newSender(cfg, logger)
	c.Notifications, err = service.NewNotificationService(c.Sender, c.Registrations, c.Audit, validate, c.Metrics, logger.Named("mail"), service.NotificationConfig{
		EnqueueTimeout:    cfg.Mail.EnqueueTimeout,
		MaxAttachmentSize: cfg.Uploads.MaxFileSizeBytes,
		Configured:        !cfg.Mail.Enabled || cfg.SMTP.Configured(),
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	c.MailQueue = jobs.NewQueue("mail", c.Notifications.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.MaxRetries,
		RetryDelay: cfg.Mail.RetryDelay,
		JobTimeout: cfg.SMTP.Timeout,
		OnFailure:  c.Notifications.OnJobFailure,
		Logger:     logger.Named("queue"),
	})
	c.Notifications.UseQueue(c.MailQueue)

	c.Lifecycle = service.NewStatusService(c.Registrations, c.Uploads, c.Notifications, c.Audit, c.Cache, c.Metrics, logger.Named("lifecycle"), cfg.PublicBaseURL)
	c.Exports = service.NewExportService(c.Registration, export.NewCSVExporter(true), export.NewPDFExporter(), logger.Named("export"))
	c.Maintenance = service.NewMaintenanceService(c.Registrations, c.Uploads, db, c.Cache, cfg.Uploads.OrphanGrace, logger.Named("maintenance"))

	return c, nil
}

func (c *Container) buildCache() *service.CacheService {
	cfg := c.Config
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			c.Logger.Warn("redis unavailable, registration cache disabled", zap.Error(err))
			return nil
		}
		c.Redis = client
		return service.NewCacheService(repository.NewRedisCacheRepository(client), c.Metrics, cfg.Cache.TTL, c.Logger.Named("cache"))
	case config.CacheDriverMemory:
		return service.NewCacheService(repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Cache.TTL)), c.Metrics, cfg.Cache.TTL, c.Logger.Named("cache"))
	default:
		return nil
	}
}

func newSender(cfg *config.Config, logger *zap.Logger) mailer.Sender {
	if !cfg.Mail.Enabled {
		return mailer.NewLogSender(logger.Named("mail"))
	}
	sender, err := mailer.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logger.Warn("SMTP not configured, emails will only be logged", zap.Error(err))
		return mailer.NewLogSender(logger.Named("mail"))
	}
	return sender
}

// Close releases connections. It is safe to call on a partially built container.
func (c *Container) Close() error {
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
