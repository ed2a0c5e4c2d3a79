package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yusing/cspolicy/config"
	"github.com/yusing/cspolicy/csp"
	"github.com/yusing/cspolicy/http/httpheaders"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		selected []string
		nonce    string
		path     string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the CSP headers of the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			results, err := cfg.Builder().Build(csp.BuildOptions{
				Select: selected,
				Nonce:  nonce,
			})
			if err != nil {
				return err
			}
			writeHeaders(cmd.OutOrStdout(), headersFor(results, path))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "Policies to render, in order")
	cmd.Flags().StringVar(&nonce, "nonce", "", "Nonce to include")
	cmd.Flags().StringVar(&path, "path", "", "Request path, for exclude_url_prefixes")
	return cmd
}

func headersFor(results []csp.Result, path string) http.Header {
	h := make(http.Header)
	for _, res := range results {
		if path != "" && res.Excludes(path) {
			continue
		}
		h.Add(httpheaders.CSPHeader(res.ReportOnly), res.Policy)
	}
	return h
}

func writeHeaders(w io.Writer, h http.Header) {
	for _, key := range []string{httpheaders.HeaderCSP, httpheaders.HeaderCSPReportOnly} {
		if values := h.Values(key); len(values) > 0 {
			fmt.Fprintf(w, "%s: %s\n", key, strings.Join(values, ", "))
		}
	}
}
