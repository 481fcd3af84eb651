package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnatoleLucet/impact/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCmd(opts *options) *cobra.Command {
	var (
		addr string
		tick time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve store snapshots and runtime metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				c.Serve.Addr = addr
			}
			if cmd.Flags().Changed("tick") {
				c.Serve.Tick = tick
			}
			if err := c.Validate(); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			logger := setup(c, cmd.ErrOrStderr(), reg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, c, reg, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&tick, "tick", 0, "counter increment interval (default from config, 1s)")

	return cmd
}

func serve(ctx context.Context, c config.Config, gatherer prometheus.Gatherer, logger logr.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := newGraph()
	graphErr := make(chan error, 1)
	go func() {
		err := g.run(ctx, c.Serve.Tick)
		if err != nil {
			cancel()
		}
		graphErr <- err
	}()

	srv := &http.Server{
		Addr:              c.Serve.Addr,
		Handler:           newRouter(g, gatherer, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "shutdown failed")
		}
	}()

	logger.Info("serving", "addr", c.Serve.Addr, "tick", c.Serve.Tick)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-graphErr
		return err
	}

	cancel()
	return <-graphErr
}

func newRouter(g *graph, gatherer prometheus.Gatherer, logger logr.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-g.done:
			http.Error(w, errGraphStopped.Error(), http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		}
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/stores", func(w http.ResponseWriter, r *http.Request) {
		snap, err := g.snapshot(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			logger.Error(err, "encode snapshot")
		}
	})

	r.Post("/stores/{store}/{action}", func(w http.ResponseWriter, r *http.Request) {
		err := g.call(r.Context(), chi.URLParam(r, "store"), chi.URLParam(r, "action"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func writeError(w http.ResponseWriter, logger logr.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errUnknownStore), errors.Is(err, errUnknownCall):
		status = http.StatusNotFound
	case errors.Is(err, errGraphStopped):
		status = http.StatusServiceUnavailable
	default:
		logger.Error(err, "request failed")
	}

	http.Error(w, err.Error(), status)
}
