/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/config"
	"dirpx.dev/errbit/httpx"
	"dirpx.dev/errbit/report"
	"dirpx.dev/errbit/sink"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	return config.Load(path)
}

func newServeCmd(configPath *string, log *slog.Logger) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve demo endpoints that fail in every reportable way",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			reg := prometheus.NewRegistry()
			metrics, err := sink.NewMetrics(reg)
			if err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}
			rep, err := report.New(cfg,
				report.WithLogger(log),
				report.WithSink(sink.Multi(sink.Log(log), metrics)),
			)
			if err != nil {
				return fmt.Errorf("build reporter: %w", err)
			}

			mux := newDemoMux(httpx.New(rep))
			mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", addr, "errbit", cfg.Host, "dispatch", string(cfg.Dispatch))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Std()+5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("shutdown", "error", err)
			}
			if err := rep.Close(shutdownCtx); err != nil {
				log.Warn("pending reports dropped", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newDemoMux wires one route per reporting path.
func newDemoMux(mw *httpx.Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /ok", mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})))

	// Error response: the handler renders a 500 and attaches the cause.
	mux.Handle("GET /fail", mw.Handler(httpx.Adapt(func(w http.ResponseWriter, r *http.Request) error {
		return errbit.E(code.Internal, "boom")
	}, nil)))

	// Unavailable without an attached error is not reported.
	mux.Handle("GET /unavailable", mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	})))

	// Propagated: the error leaves the wrapped handler, Adapt renders it.
	mux.Handle("GET /parse", httpx.Adapt(mw.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
		if err != nil {
			return errbit.Wrap(err, code.Invalid, "parse failure")
		}
		_, _ = fmt.Fprintln(w, at.UTC().Format(time.RFC3339))
		return nil
	}), nil))

	mux.Handle("GET /panic", mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]int
		m["x"]++
	})))

	return mux
}
