package httputils

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// HeaderHookWriter wraps http.ResponseWriter and calls a hook exactly once,
// right before the status line is written. The hook may still modify the
// response headers.
//
// Informational responses (1xx other than 101) do not trigger the hook.
type HeaderHookWriter struct {
	w    http.ResponseWriter
	hook func(h http.Header, status int)

	fired  bool
	status int
}

// NewHeaderHookWriter creates a new HeaderHookWriter.
func NewHeaderHookWriter(w http.ResponseWriter, hook func(h http.Header, status int)) *HeaderHookWriter {
	return &HeaderHookWriter{w: w, hook: hook}
}

func (hw *HeaderHookWriter) Header() http.Header {
	return hw.w.Header()
}

func (hw *HeaderHookWriter) WriteHeader(code int) {
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		hw.w.WriteHeader(code)
		return
	}
	hw.fire(code)
	hw.w.WriteHeader(code)
}

func (hw *HeaderHookWriter) Write(b []byte) (int, error) {
	hw.fire(http.StatusOK)
	return hw.w.Write(b)
}

// Fire runs the hook with status if it has not run yet.
func (hw *HeaderHookWriter) Fire(status int) {
	hw.fire(status)
}

func (hw *HeaderHookWriter) fire(status int) {
	if hw.fired {
		return
	}
	hw.fired = true
	hw.status = status
	hw.hook(hw.w.Header(), status)
}

// Fired reports whether the hook has run.
func (hw *HeaderHookWriter) Fired() bool {
	return hw.fired
}

// Status returns the status the hook ran with, or 0.
func (hw *HeaderHookWriter) Status() int {
	return hw.status
}

// Flush implements http.Flusher.
func (hw *HeaderHookWriter) Flush() {
	hw.fire(http.StatusOK)
	if flusher, ok := hw.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker.
func (hw *HeaderHookWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := hw.w.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("hijack: %w", http.ErrNotSupported)
	}
	hw.fire(http.StatusSwitchingProtocols)
	return hijacker.Hijack()
}

// Unwrap returns the underlying ResponseWriter.
func (hw *HeaderHookWriter) Unwrap() http.ResponseWriter {
	return hw.w
}
