package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// Context keys for the verified claims and the resolved session.
const (
	ContextUserKey    = "currentUser"
	ContextSessionKey = "currentSession"
)

// TokenValidator verifies an access token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
}

// SessionResolver turns verified claims into a Session.
type SessionResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Session, error)
}

// JWT requires a valid bearer token and resolves the caller's session. Any
// failure aborts with 401.
func JWT(tokens TokenValidator, sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session stored by JWT, or nil.
func CurrentSession(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
