package main

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yusing/cspolicy/config"
	httputils "github.com/yusing/cspolicy/http"
	"github.com/yusing/cspolicy/http/accesslog"
	"github.com/yusing/cspolicy/http/cspgin"
	"github.com/yusing/cspolicy/http/cspmiddleware"
	"github.com/yusing/cspolicy/server"
)

const (
	defaultAddr    = ":8080"
	reportPath     = "/csp-report"
	metricsPath    = "/metrics"
	maxReportBytes = 64 << 10
)

type serveOptions struct {
	addr          string
	httpsAddr     string
	certFile      string
	keyFile       string
	http3         bool
	proxyProtocol bool
	engine        string
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	sopts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo page with the configured CSP headers",
		Long: `Serve a demo page carrying the configured CSP headers.

The page uses the request nonce in an inline script. Violation reports
posted to ` + reportPath + ` are logged and the emitter metrics are
exposed at ` + metricsPath + `. The configuration file is reloaded when it
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, sopts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&sopts.addr, "addr", "a", defaultAddr, "HTTP listen address")
	flags.StringVar(&sopts.httpsAddr, "https-addr", "", "HTTPS listen address, requires --cert and --key")
	flags.StringVar(&sopts.certFile, "cert", "", "TLS certificate file")
	flags.StringVar(&sopts.keyFile, "key", "", "TLS key file")
	flags.BoolVar(&sopts.http3, "http3", false, "Serve HTTP/3 on the HTTPS address")
	flags.BoolVar(&sopts.proxyProtocol, "proxy-protocol", false, "Accept PROXY protocol headers")
	flags.StringVar(&sopts.engine, "engine", "http", "Handler engine (http, gin)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, sopts *serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	metrics := cspmiddleware.NewMetrics()
	mw := cspmiddleware.New(cfg, cspmiddleware.WithMetrics(metrics))
	if opts.configPath != "" {
		if err := config.Watch(ctx, opts.configPath, mw.Reload); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	switch sopts.engine {
	case "gin":
		mux.Handle("/", newGinHandler(mw))
	default:
		mux.Handle("/", newDemoHandler(mw))
	}

	srvOpts := server.Options{
		Name:                 "cspgen",
		HTTPAddr:             sopts.addr,
		HTTPSAddr:            sopts.httpsAddr,
		Handler:              accesslog.Middleware(accesslog.New(log.Logger), mux),
		HTTP3:                sopts.http3,
		SupportProxyProtocol: sopts.proxyProtocol,
		Debug:                cfg.Debug,
	}
	if sopts.certFile != "" {
		srvOpts.CertProvider, err = server.LoadCertificate(sopts.certFile, sopts.keyFile)
		if err != nil {
			return err
		}
	}

	log.Info().Str("version", versionString()).Str("engine", sopts.engine).Msg("starting cspgen")
	srv := server.NewServer(srvOpts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	return srv.Wait()
}

var demoPage = template.Must(template.New("demo").Parse(`<!DOCTYPE html>
<html>
<head><title>cspgen</title></head>
<body>
<p id="status">inline scripts are blocked</p>
<script nonce="{{.Nonce}}">document.getElementById("status").textContent = "nonce accepted";</script>
</body>
</html>
`))

func renderDemo(w io.Writer, nonce string) error {
	return demoPage.Execute(w, map[string]any{"Nonce": nonce})
}

func newDemoHandler(mw *cspmiddleware.Middleware) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+reportPath, handleReport)
	mux.Handle("GET "+reportPath, cspmiddleware.WithExempt(http.NotFoundHandler()))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		nonce := cspmiddleware.Nonce(r).String()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderDemo(w, nonce); err != nil {
			httputils.LogError(r).Err(err).Msg("failed to render page")
		}
	})
	return mw.Handler(mux)
}

func newGinHandler(mw *cspmiddleware.Middleware) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), cspgin.Middleware(mw))
	r.POST(reportPath, func(c *gin.Context) {
		handleReport(c.Writer, c.Request)
	})
	r.GET("/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := renderDemo(c.Writer, cspgin.Nonce(c).String()); err != nil {
			httputils.LogError(c.Request).Err(err).Msg("failed to render page")
		}
	})
	return r
}

func handleReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxReportBytes))
	if err != nil {
		httputils.LogWarn(r).Err(err).Msg("failed to read violation report")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "invalid report", http.StatusBadRequest)
		return
	}
	log.Warn().RawJSON("report", body).Str("user_agent", r.UserAgent()).Msg("csp violation")
	w.WriteHeader(http.StatusNoContent)
}
