package errreport

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rollbar/rollbar-go"

	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
)

// IdentifyFunc returns extra fields describing the caller of a request, if known.
type IdentifyFunc func(c *gin.Context) map[string]interface{}

// Reporter forwards server errors and panics to Rollbar.
type Reporter struct {
	enabled bool
	report  func(level string, r *http.Request, err error, extras map[string]interface{})
}

// New configures Rollbar. Without a token the reporter is a no-op.
func New(cfg config.ErrorReportingConfig, env string) *Reporter {
	if cfg.RollbarToken == "" {
		return &Reporter{}
	}
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(cfg.CodeVersion)
	rollbar.SetServerRoot("github.com/noah-isme/school-portal-api")
	return &Reporter{enabled: true, report: rollbar.RequestErrorWithExtras}
}

// Enabled reports whether errors are forwarded.
func (r *Reporter) Enabled() bool {
	return r != nil && r.enabled && r.report != nil
}

// Middleware reports panics (then re-panics for gin.Recovery) and 5xx responses.
func (r *Reporter) Middleware(identify IdentifyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Enabled() {
			c.Next()
			return
		}
		defer func() {
			if recovered := recover(); recovered != nil {
				r.report(rollbar.CRIT, c.Request, fmt.Errorf("panic: %v", recovered), r.extras(c, identify))
				panic(recovered)
			}
		}()

		c.Next()

		if c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		err := fmt.Errorf("http %d", c.Writer.Status())
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		r.report(rollbar.ERR, c.Request, err, r.extras(c, identify))
	}
}

// Flush blocks until queued reports are sent.
func (r *Reporter) Flush() {
	if r.Enabled() {
		rollbar.Wait()
	}
}

func (r *Reporter) extras(c *gin.Context, identify IdentifyFunc) map[string]interface{} {
	extras := map[string]interface{}{
		"route":      c.FullPath(),
		"request_id": requestid.Value(c),
	}
	if identify != nil {
		for k, v := range identify(c) {
			extras[k] = v
		}
	}
	return extras
}
