package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/policy"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (t tokenStub) ValidateToken(raw string) (*models.JWTClaims, error) {
	if claims, ok := t[raw]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type sessionStub struct{}

func (sessionStub) Resolve(_ context.Context, claims *models.JWTClaims) (*models.Session, error) {
	if claims.ProfileID == "inactive" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "profile is inactive")
	}
	return &models.Session{UserID: claims.UserID, ProfileID: claims.ProfileID, Role: claims.Role}, nil
}

func newTestRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := tokenStub{
		"teacher":  {UserID: "u1", ProfileID: "p1", Role: models.RoleClassTeacher},
		"admin":    {UserID: "u2", ProfileID: "p2", Role: models.RoleAdmin},
		"inactive": {UserID: "u3", ProfileID: "inactive", Role: models.RoleStudent},
	}
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(tokens, sessionStub{})}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		session := CurrentSession(c)
		c.String(http.StatusOK, string(session.Role))
	})
	r.GET("/", handlers...)
	return r
}

func call(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTResolvesSession(t *testing.T) {
	r := newTestRouter()

	w := call(r, "Bearer teacher")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "class_teacher", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer inactive").Code)
}

func TestRequireRolesAndCapability(t *testing.T) {
	byRole := newTestRouter(RequireRoles(models.RoleAdmin, models.RoleSubAdmin))
	assert.Equal(t, http.StatusOK, call(byRole, "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, call(byRole, "Bearer teacher").Code)

	byCap := newTestRouter(RequireCapability(policy.CapMarkAttendance))
	assert.Equal(t, http.StatusOK, call(byCap, "Bearer teacher").Code)
	assert.Equal(t, http.StatusForbidden, call(byCap, "Bearer admin").Code)
}

func TestAuditContextAndMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var info models.RequestInfo
	var meta map[string]interface{}
	r.Use(WithResponseMeta(), AuditContext())
	r.GET("/", func(c *gin.Context) {
		info = models.RequestInfoFrom(c.Request.Context())
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "portal-test")
	req.RemoteAddr = "10.1.2.3:5555"
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "portal-test", info.UserAgent)
	assert.Equal(t, "10.1.2.3", info.IPAddress)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
