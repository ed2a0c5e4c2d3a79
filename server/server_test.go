package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"testing"

	expect "github.com/yusing/cspolicy/testing"
)

func TestServer(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	s := NewServer(Options{
		Name:     "test",
		HTTPAddr: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok")
		}),
		Debug: true,
	})
	expect.NoError(t, s.Start(ctx))

	port := s.Port("http")
	expect.True(t, port > 0)
	expect.Equal(t, s.Port("https"), 0)

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port))
	expect.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	expect.NoError(t, err)
	expect.Equal(t, string(body), "ok")

	cancel()
	expect.NoError(t, s.Wait())
}

func TestServerListenError(t *testing.T) {
	s := NewServer(Options{Name: "test", HTTPAddr: "127.0.0.1:-1", Handler: http.NotFoundHandler()})
	expect.HasError(t, s.Start(t.Context()))
}

func TestServerNoCertificate(t *testing.T) {
	s := NewServer(Options{Name: "test", HTTPSAddr: "127.0.0.1:0", Handler: http.NotFoundHandler()})
	expect.NoError(t, s.Start(t.Context()))
	expect.Equal(t, s.Port("https"), 0)
	expect.NoError(t, s.Wait())
}

func TestLoadCertificateMissing(t *testing.T) {
	_, err := LoadCertificate("missing.crt", "missing.key")
	expect.HasError(t, err)
}
