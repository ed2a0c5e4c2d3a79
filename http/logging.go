package httputils

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func reqLogger(r *http.Request, level zerolog.Level) *zerolog.Event {
	return log.WithLevel(level). //nolint:zerologlint
					Str("remote", r.RemoteAddr).
					Str("host", r.Host).
					Str("method", r.Method).
					Str("path", r.URL.Path)
}

func LogError(r *http.Request) *zerolog.Event { return reqLogger(r, zerolog.ErrorLevel) }
func LogWarn(r *http.Request) *zerolog.Event  { return reqLogger(r, zerolog.WarnLevel) }
func LogDebug(r *http.Request) *zerolog.Event { return reqLogger(r, zerolog.DebugLevel) }
