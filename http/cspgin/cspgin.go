// Package cspgin adapts cspmiddleware to gin.
package cspgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yusing/cspolicy/csp"
	"github.com/yusing/cspolicy/http/cspmiddleware"
)

// Middleware returns a gin middleware that sets the CSP headers of m.
func Middleware(m *cspmiddleware.Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, e := m.Start(c.Request)
		c.Request = r
		w := &writer{ResponseWriter: c.Writer, emit: e.Emit}
		c.Writer = w
		c.Next()
		// gin writes the header of empty responses after the chain returns
		w.fire()
	}
}

// writer emits before gin writes the status line. gin's WriteHeader only
// records the status, so the hook sits on the methods that write.
type writer struct {
	gin.ResponseWriter
	emit  func(http.Header, int)
	fired bool
}

func (w *writer) fire() {
	if w.fired || w.ResponseWriter.Written() {
		return
	}
	w.fired = true
	w.emit(w.Header(), w.Status())
}

func (w *writer) WriteHeaderNow() {
	w.fire()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *writer) Write(data []byte) (int, error) {
	w.fire()
	return w.ResponseWriter.Write(data)
}

func (w *writer) WriteString(s string) (int, error) {
	w.fire()
	return w.ResponseWriter.WriteString(s)
}

func (w *writer) Flush() {
	w.fire()
	w.ResponseWriter.Flush()
}

// Nonce returns the nonce of the request.
func Nonce(c *gin.Context) *csp.Nonce {
	return cspmiddleware.Nonce(c.Request)
}

// Update is the route middleware form of cspmiddleware.Update.
func Update(policies any) gin.HandlerFunc {
	set := csp.Normalize(policies)
	return func(c *gin.Context) {
		cspmiddleware.Update(c.Request, set)
	}
}

// Replace is the route middleware form of cspmiddleware.Replace.
func Replace(policies any) gin.HandlerFunc {
	set := csp.Normalize(policies)
	return func(c *gin.Context) {
		cspmiddleware.Replace(c.Request, set)
	}
}

// Config is the route middleware form of cspmiddleware.Config.
func Config(policies any) gin.HandlerFunc {
	set := csp.Normalize(policies)
	return func(c *gin.Context) {
		cspmiddleware.Config(c.Request, set)
	}
}

// Select is the route middleware form of cspmiddleware.Select.
func Select(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cspmiddleware.Select(c.Request, names...)
	}
}

// Exempt is the route middleware form of cspmiddleware.Exempt.
func Exempt(c *gin.Context) {
	cspmiddleware.Exempt(c.Request)
}

// ExemptReportOnly is the route middleware form of
// cspmiddleware.ExemptReportOnly.
func ExemptReportOnly(c *gin.Context) {
	cspmiddleware.ExemptReportOnly(c.Request)
}
