package errreport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/pkg/config"
)

type capturedReport struct {
	level  string
	err    error
	extras map[string]interface{}
}

func newCapturingReporter(reports *[]capturedReport) *Reporter {
	return &Reporter{enabled: true, report: func(level string, _ *http.Request, err error, extras map[string]interface{}) {
		*reports = append(*reports, capturedReport{level: level, err: err, extras: extras})
	}}
}

func TestReporterDisabledWithoutToken(t *testing.T) {
	r := New(config.ErrorReportingConfig{}, "test")
	assert.False(t, r.Enabled())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(r.Middleware(nil))
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReporterReportsServerErrorsOnly(t *testing.T) {
	var reports []capturedReport
	r := newCapturingReporter(&reports)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(r.Middleware(func(*gin.Context) map[string]interface{} {
		return map[string]interface{}{"profile_id": "p-1"}
	}))
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/forbidden", func(c *gin.Context) { c.Status(http.StatusForbidden) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	require.Len(t, reports, 1)
	assert.Equal(t, "error", reports[0].level)
	assert.EqualError(t, reports[0].err, "db down")
	assert.Equal(t, "p-1", reports[0].extras["profile_id"])
	assert.Equal(t, "/fail", reports[0].extras["route"])
}

func TestReporterReportsPanicsBeforeRecovery(t *testing.T) {
	var reports []capturedReport
	r := newCapturingReporter(&reports)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery(), r.Middleware(nil))
	router.GET("/panic", func(*gin.Context) { panic("nil class") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, reports, 1)
	assert.Equal(t, "critical", reports[0].level)
}
