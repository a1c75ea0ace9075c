package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/visionafrica/debate-portal/pkg/storage"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Registration *RegistrationHandler
	Admin        *AdminHandler
	Auth         *AuthHandler
	Metrics      *MetricsHandler
	// Protect guards the admin routes.
	Protect gin.HandlerFunc
	// UploadsDir is served read-only under /uploads when set.
	UploadsDir string
}

// RegisterRoutes mounts the API under prefix and the infrastructure routes at the root.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if h.UploadsDir != "" {
		uploads := r.Group("/"+storage.PublicPrefix, func(c *gin.Context) {
			c.Header("Cross-Origin-Resource-Policy", "cross-origin")
			c.Next()
		})
		uploads.Static("/", h.UploadsDir)
	}

	api := r.Group(prefix)

	registration := api.Group("/registration")
	registration.POST("/register", h.Registration.Register)
	registration.GET("", h.Registration.List)
	registration.DELETE("/:id", h.Protect, h.Registration.Delete)

	api.POST("/admin/login", h.Auth.Login)

	admin := api.Group("/admin", h.Protect)
	admin.POST("/logout", h.Auth.Logout)
	admin.GET("/me", h.Auth.Me)
	admin.GET("/registrations", h.Admin.List)
	admin.GET("/registrations/export", h.Admin.Export)
	admin.GET("/registrations/:id", h.Admin.Get)
	admin.GET("/schools", h.Admin.List)
	admin.PUT("/confirm/:id", h.Admin.ConfirmPayment)
	admin.PUT("/schools/status/:id", h.Admin.UpdateStatus)
	admin.DELETE("/schools/:id", h.Admin.Delete)
	admin.POST("/send-email", h.Admin.SendEmail)
}
