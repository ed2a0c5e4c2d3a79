// Package accesslog logs served requests together with the CSP headers
// of their responses.
package accesslog

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	httputils "github.com/yusing/cspolicy/http"
	"github.com/yusing/cspolicy/http/httpheaders"
)

type AccessLogger interface {
	LogRequest(req *http.Request, status int, header http.Header, elapsed time.Duration)
}

type zerologLogger struct {
	l zerolog.Logger
}

// New returns an AccessLogger writing to l at info level.
func New(l zerolog.Logger) AccessLogger {
	return zerologLogger{l: l}
}

func (z zerologLogger) LogRequest(req *http.Request, status int, header http.Header, elapsed time.Duration) {
	z.l.Info().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", status).
		Bool("csp", header.Get(httpheaders.HeaderCSP) != "").
		Bool("csp_report_only", header.Get(httpheaders.HeaderCSPReportOnly) != "").
		Dur("elapsed", elapsed).
		Msg("request")
}

// Middleware logs every request served by next. Place it outside the CSP
// middleware so the logged headers include the emitted policies.
func Middleware(logger AccessLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var (
			status int
			header http.Header
		)
		hw := httputils.NewHeaderHookWriter(w, func(h http.Header, code int) {
			status = code
			header = h.Clone()
		})
		next.ServeHTTP(hw, r)
		hw.Fire(http.StatusOK)
		logger.LogRequest(r, status, header, time.Since(start))
	})
}
