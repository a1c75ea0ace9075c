package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/visionafrica/debate-portal/internal/models"
	"github.com/visionafrica/debate-portal/internal/service"
	appErrors "github.com/visionafrica/debate-portal/pkg/errors"
	"github.com/visionafrica/debate-portal/pkg/response"
)

const (
	// ContextAdminKey is the gin context key storing the authenticated *models.Admin.
	ContextAdminKey = "currentAdmin"
	// ContextClaimsKey is the gin context key storing the token claims.
	ContextClaimsKey = "currentClaims"
	// AdminCookieName carries the token for browser sessions.
	AdminCookieName = "adminToken"
)

// Authenticator resolves a bearer token to its admin.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Admin, *models.JWTClaims, error)
}

var _ Authenticator = (*service.AuthService)(nil)

// Protect requires a valid admin token from the Authorization header or,
// failing that, the admin cookie.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, service.MsgNoToken))
			c.Abort()
			return
		}

		admin, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, admin)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookie, err := c.Cookie(AdminCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// CurrentAdmin returns the admin stored by Protect.
func CurrentAdmin(c *gin.Context) *models.Admin {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	admin, _ := value.(*models.Admin)
	return admin
}
