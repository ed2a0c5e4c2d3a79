// Package server runs the HTTP servers of cspgen serve.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pires/go-proxyproto"
	h2proxy "github.com/pires/go-proxyproto/helper/http2"
	"github.com/quic-go/quic-go/http3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type CertProvider interface {
	GetCert(_ *tls.ClientHelloInfo) (*tls.Certificate, error)
}

type Server struct {
	Name         string
	CertProvider CertProvider
	http         *http.Server
	https        *http.Server
	h3           *http3.Server
	startTime    time.Time
	proxyProto   bool
	debug        bool

	mu    sync.Mutex
	ports map[string]int
	group *errgroup.Group

	l zerolog.Logger
}

type Options struct {
	Name         string
	HTTPAddr     string
	HTTPSAddr    string
	CertProvider CertProvider
	Handler      http.Handler

	// HTTP3 serves HTTP/3 on HTTPSAddr and advertises it with Alt-Svc.
	HTTP3                bool
	SupportProxyProtocol bool
	// Debug routes the error log of the servers to the logger.
	Debug bool
}

type httpServer interface {
	*http.Server | *http3.Server
	Shutdown(ctx context.Context) error
}

func NewServer(opt Options) (s *Server) {
	var httpSer, httpsSer *http.Server
	var h3 *http3.Server

	logger := log.With().Str("server", opt.Name).Logger()

	certAvailable := false
	if opt.CertProvider != nil {
		_, err := opt.CertProvider.GetCert(nil)
		certAvailable = err == nil
		if err != nil {
			logger.Warn().Err(err).Msg("certificate unavailable, https disabled")
		}
	}

	if opt.HTTPAddr != "" {
		httpSer = &http.Server{
			Addr:    opt.HTTPAddr,
			Handler: opt.Handler,
		}
	}
	if certAvailable && opt.HTTPSAddr != "" {
		httpsSer = &http.Server{
			Addr:    opt.HTTPSAddr,
			Handler: opt.Handler,
			TLSConfig: &tls.Config{
				GetCertificate: opt.CertProvider.GetCert,
				MinVersion:     tls.VersionTLS12,
			},
		}
		if opt.HTTP3 {
			if opt.SupportProxyProtocol {
				logger.Warn().Msg("HTTP/3 is enabled, but proxy protocol is not supported for HTTP/3")
			} else {
				httpsSer.TLSConfig.NextProtos = []string{http3.NextProtoH3, "h2", "http/1.1"}
				h3 = &http3.Server{
					Addr:      httpsSer.Addr,
					Handler:   httpsSer.Handler,
					TLSConfig: http3.ConfigureTLSConfig(httpsSer.TLSConfig),
				}
				if httpSer != nil {
					httpSer.Handler = advertiseHTTP3(httpSer.Handler, h3)
				}
				httpsSer.Handler = advertiseHTTP3(httpsSer.Handler, h3)
			}
		}
	}
	return &Server{
		Name:         opt.Name,
		CertProvider: opt.CertProvider,
		http:         httpSer,
		https:        httpsSer,
		h3:           h3,
		l:            logger,
		proxyProto:   opt.SupportProxyProtocol,
		debug:        opt.Debug,
		ports:        make(map[string]int),
	}
}

// Start listens on the configured addresses and serves in the background
// until ctx is canceled. Listen errors are returned immediately.
//
// Start is non-blocking; use Wait to block until the servers stop.
func (s *Server) Start(ctx context.Context) error {
	s.startTime = time.Now()
	s.group = new(errgroup.Group)

	if err := start(ctx, s, s.http); err != nil {
		return err
	}
	if err := start(ctx, s, s.https); err != nil {
		return err
	}
	return start(ctx, s, s.h3)
}

// Wait blocks until every server has stopped and returns the first serve
// error.
func (s *Server) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// Port returns the port the server of proto ("http", "https" or "h3")
// listens on, or 0.
func (s *Server) Port(proto string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ports[proto]
}

func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func start[S httpServer](ctx context.Context, s *Server, srv S) error {
	if srv == nil {
		return nil
	}

	if s.debug {
		setLogger(srv, &s.l)
	}

	proto := proto(srv)

	var lc net.ListenConfig
	var (
		serveFunc func() error
		closer    io.Closer
		port      int
	)

	switch srv := any(srv).(type) {
	case *http.Server:
		srv.BaseContext = func(l net.Listener) context.Context {
			return ctx
		}
		l, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			return err
		}
		port = l.Addr().(*net.TCPAddr).Port
		if s.proxyProto {
			l = &proxyproto.Listener{Listener: l}
		}
		if srv.TLSConfig != nil {
			l = tls.NewListener(l, srv.TLSConfig)
		}
		if s.proxyProto {
			serveFunc = getServeFunc(l, h2proxy.NewServer(srv, nil).Serve)
		} else {
			serveFunc = getServeFunc(l, srv.Serve)
		}
		closer = l
	case *http3.Server:
		l, err := lc.ListenPacket(ctx, "udp", srv.Addr)
		if err != nil {
			return err
		}
		port = l.LocalAddr().(*net.UDPAddr).Port
		serveFunc = getServeFunc(l, srv.Serve)
		closer = l
	}

	s.mu.Lock()
	s.ports[proto] = port
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			stop(srv, closer, proto, &s.l)
		case <-stopped:
		}
	}()

	logStarted(srv, port, &s.l)
	s.group.Go(func() error {
		defer close(stopped)
		err := convertError(serveFunc())
		if err != nil {
			s.l.Err(err).Str("proto", proto).Msg("failed to serve")
		}
		return err
	})
	return nil
}

func stop[S httpServer](srv S, l io.Closer, proto string, logger *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := convertError(errors.Join(srv.Shutdown(ctx), l.Close())); err != nil {
		logger.Err(err).Str("proto", proto).Msg("failed to shutdown server")
	} else {
		logger.Info().Str("proto", proto).Str("addr", addr(srv)).Msg("server stopped")
	}
}
