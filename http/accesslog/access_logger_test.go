package accesslog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yusing/cspolicy/http/cspmiddleware"
	expect "github.com/yusing/cspolicy/testing"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zerolog.New(&buf))

	csp := cspmiddleware.New(nil)
	h := Middleware(logger, csp.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
	expect.Equal(t, w.Code, http.StatusAccepted)

	var entry map[string]any
	expect.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	expect.Equal(t, entry["method"], any(http.MethodGet))
	expect.Equal(t, entry["path"], any("/page"))
	expect.Equal(t, entry["status"], any(float64(http.StatusAccepted)))
	expect.Equal(t, entry["csp"], any(true))
	expect.Equal(t, entry["csp_report_only"], any(false))
}

func TestMiddlewareNoWrite(t *testing.T) {
	var buf bytes.Buffer
	h := Middleware(New(zerolog.New(&buf)), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	expect.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	expect.Equal(t, entry["status"], any(float64(http.StatusOK)))
	expect.Equal(t, entry["csp"], any(false))
}
