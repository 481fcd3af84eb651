package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AnatoleLucet/impact"
	"github.com/AnatoleLucet/impact/internal/config"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { impact.Configure(impact.DefaultConfig()) })
}

func TestDemo(t *testing.T) {
	t.Run("prints every update", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runDemo(&out, 3))

		assert.Equal(t, []string{
			"count=0 parity=even",
			"save: never",
			"count=1 parity=odd",
			"count=2 parity=even",
			"count=3 parity=odd",
			"count=5 parity=odd",
			"count=15 parity=odd",
			"count=0 parity=even",
			"save: saving",
			"save: saved 0",
			"snapshot map[Count:0 Parity:even Saved:saved 0]",
			"unmounted",
		}, strings.Split(strings.TrimSpace(out.String()), "\n"))
	})

	t.Run("from the command line", func(t *testing.T) {
		resetConfig(t)

		var out bytes.Buffer
		cmd := rootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"demo", "--steps", "0"})

		require.NoError(t, cmd.Execute())
		assert.True(t, strings.HasPrefix(out.String(), "count=0 parity=even\nsave: never\ncount=2 parity=even\n"))
	})

	t.Run("rejects an invalid config", func(t *testing.T) {
		resetConfig(t)

		cmd := rootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"demo", "--max-passes", "-1"})

		assert.ErrorIs(t, cmd.Execute(), config.ErrInvalid)
	})
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impact.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  verbosity: 1\nruntime:\n  max_passes: 20\n"), 0o600))

	opts := &options{configPath: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVarP(&opts.verbosity, "verbosity", "v", 0, "")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", 0, "")
	require.NoError(t, cmd.ParseFlags([]string{"--max-passes", "5"}))

	c, err := opts.load(cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Log.Verbosity)
	assert.Equal(t, 5, c.Runtime.MaxPasses)
	assert.Equal(t, ":8080", c.Serve.Addr)
}

func startGraph(t *testing.T) *graph {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	g := newGraph()
	go g.run(ctx, time.Hour)

	t.Cleanup(func() {
		cancel()
		<-g.done
	})

	return g
}

func request(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		router := newRouter(startGraph(t), prometheus.NewRegistry(), logr.Discard())

		rec := request(t, router, http.MethodGet, "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("snapshots and actions", func(t *testing.T) {
		router := newRouter(startGraph(t), prometheus.NewRegistry(), logr.Discard())

		rec := request(t, router, http.MethodPost, "/stores/counter/increment")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = request(t, router, http.MethodGet, "/stores")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"counter":{"Count":1,"Parity":"odd","Saved":"never"}}`, rec.Body.String())

		rec = request(t, router, http.MethodPost, "/stores/counter/reset")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = request(t, router, http.MethodGet, "/stores")
		assert.JSONEq(t, `{"counter":{"Count":0,"Parity":"even","Saved":"never"}}`, rec.Body.String())
	})

	t.Run("save settles on the graph goroutine", func(t *testing.T) {
		g := startGraph(t)
		router := newRouter(g, prometheus.NewRegistry(), logr.Discard())

		require.Equal(t, http.StatusNoContent, request(t, router, http.MethodPost, "/stores/counter/increment").Code)
		require.Equal(t, http.StatusNoContent, request(t, router, http.MethodPost, "/stores/counter/save").Code)

		assert.Eventually(t, func() bool {
			snap, err := g.snapshot(context.Background())
			return err == nil && snap["counter"]["Saved"] == "saved 1"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("unknown store or action", func(t *testing.T) {
		router := newRouter(startGraph(t), prometheus.NewRegistry(), logr.Discard())

		assert.Equal(t, http.StatusNotFound, request(t, router, http.MethodPost, "/stores/todo/increment").Code)
		assert.Equal(t, http.StatusNotFound, request(t, router, http.MethodPost, "/stores/counter/explode").Code)
	})

	t.Run("stopped graph", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		g := newGraph()
		go g.run(ctx, time.Hour)
		cancel()
		<-g.done

		router := newRouter(g, prometheus.NewRegistry(), logr.Discard())
		assert.Equal(t, http.StatusServiceUnavailable, request(t, router, http.MethodGet, "/healthz").Code)
		assert.Equal(t, http.StatusServiceUnavailable, request(t, router, http.MethodGet, "/stores").Code)
	})

	t.Run("metrics", func(t *testing.T) {
		resetConfig(t)

		reg := prometheus.NewRegistry()
		c := config.Default()
		setup(c, io.Discard, reg)

		router := newRouter(startGraph(t), reg, logr.Discard())
		require.Equal(t, http.StatusNoContent, request(t, router, http.MethodPost, "/stores/counter/increment").Code)

		rec := request(t, router, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `impact_signal_writes_total{signal="count"} 1`)
		assert.Contains(t, rec.Body.String(), "impact_open_scopes 2")
	})
}

func TestGraphTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := newGraph()
	go g.run(ctx, time.Millisecond)

	assert.Eventually(t, func() bool {
		snap, err := g.snapshot(ctx)
		return err == nil && snap["counter"]["Count"].(int) >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-g.done
}
