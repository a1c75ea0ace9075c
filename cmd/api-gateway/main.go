package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/visionafrica/debate-portal/api/swagger"
	"github.com/visionafrica/debate-portal/internal/app"
	"github.com/visionafrica/debate-portal/internal/handler"
	"github.com/visionafrica/debate-portal/internal/middleware"
	"github.com/visionafrica/debate-portal/pkg/config"
	"github.com/visionafrica/debate-portal/pkg/logger"
	corsmiddleware "github.com/visionafrica/debate-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/visionafrica/debate-portal/pkg/middleware/requestid"
	appValidator "github.com/visionafrica/debate-portal/pkg/validator"
)

// @title School Debate Registration API
// @version 1.0.0
// @description Registration portal for the school debate competition
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if err := appValidator.RegisterGinValidator(); err != nil {
		return fmt.Errorf("register validator: %w", err)
	}

	container, err := app.New(cfg, logr)
	if err != nil {
		return err
	}
	defer container.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container.MailQueue.Start(context.Background())
	defer container.MailQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(container.Metrics))

	maxUpload := cfg.Uploads.MaxFileSizeBytes
	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Registration: handler.NewRegistrationHandler(container.Registration, container.Lifecycle, maxUpload),
		Admin:        handler.NewAdminHandler(container.Registration, container.Lifecycle, container.Exports, container.Notifications, maxUpload),
		Auth:         handler.NewAuthHandler(container.Auth, cfg.Env == config.EnvProduction),
		Metrics:      handler.NewMetricsHandler(container.Metrics, container.Maintenance),
		Protect:      middleware.Protect(container.Auth),
		UploadsDir:   container.Uploads.Dir(),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
