// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package server exposes a Snapshot over HTTP for the graph viewer. A
// watcher can re-scan on source changes; each reload swaps in a new
// Snapshot and notifies websocket clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petar-djukic/blastradius/pkg/blast"
)

const (
	DefaultAddr     = "127.0.0.1:7420"
	DefaultDebounce = 200 * time.Millisecond
)

// ErrNoReloader is returned by Watch when the server has nothing to
// rebuild snapshots with.
var ErrNoReloader = errors.New("server has no reload function")

// Reloader builds a fresh snapshot, typically blast.Engine.Rescan.
type Reloader func(ctx context.Context) (*blast.Snapshot, error)

// Config configures a Server.
type Config struct {
	Addr     string
	Root     string // Directory watched for changes
	Snapshot *blast.Snapshot
	Reload   Reloader
	Debounce time.Duration
	Logger   *slog.Logger
}

// Server serves analyses of the current snapshot.
type Server struct {
	cfg      Config
	snapshot atomic.Pointer[blast.Snapshot]
	metrics  *metrics
	hub      *hub
	router   *gin.Engine
}

// New builds a server around an initial snapshot, which may be nil until
// the first reload.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{cfg: cfg, metrics: newMetrics()}
	s.hub = newHub(cfg.Logger, func(n int) { s.metrics.wsClients.Set(float64(n)) })
	if cfg.Snapshot != nil {
		s.swap(cfg.Snapshot)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.router }

// Snapshot returns the snapshot currently being served.
func (s *Server) Snapshot() *blast.Snapshot { return s.snapshot.Load() }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.cfg.Logger.Info("server stopped")
	return nil
}

// Reload rebuilds the snapshot, swaps it in and notifies websocket
// clients. On failure the previous snapshot keeps serving.
func (s *Server) Reload(ctx context.Context) error {
	if s.cfg.Reload == nil {
		return ErrNoReloader
	}
	start := time.Now()
	snap, err := s.cfg.Reload(ctx)
	if err != nil {
		s.metrics.reloads.WithLabelValues("error").Inc()
		s.cfg.Logger.Error("reload failed", "error", err)
		return err
	}
	s.metrics.reloads.WithLabelValues("ok").Inc()
	s.swap(snap)

	g := snap.Graph()
	s.cfg.Logger.Info("graph reloaded", "nodes", len(g.Nodes), "edges", len(g.Edges), "duration", time.Since(start))
	s.hub.broadcast(Event{Type: "graph-updated", Nodes: len(g.Nodes), Edges: len(g.Edges)})
	return nil
}

func (s *Server) swap(snap *blast.Snapshot) {
	s.snapshot.Store(snap)
	g := snap.Graph()
	s.metrics.graphNodes.Set(float64(len(g.Nodes)))
	s.metrics.graphEdges.Set(float64(len(g.Edges)))
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	r.GET("/ws", s.handleWebsocket)

	api := r.Group("/api", s.requireSnapshot())
	api.GET("/graph", func(c *gin.Context) {
		c.JSON(http.StatusOK, snapshotOf(c).Graph())
	})
	api.GET("/impact/forward", s.fileQuery("file", "forward", func(snap *blast.Snapshot, id string) any {
		return snap.ForwardImpact(id)
	}))
	api.GET("/impact/backward", s.fileQuery("file", "backward", func(snap *blast.Snapshot, id string) any {
		return snap.BackwardImpact(id)
	}))
	api.GET("/failing", s.fileQuery("test", "failing", func(snap *blast.Snapshot, id string) any {
		return snap.FailingTest(id)
	}))
	api.GET("/refactor", s.fileQuery("file", "refactor", func(snap *blast.Snapshot, id string) any {
		return snap.Refactor(id)
	}))
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.timed("health", func() any { return snapshotOf(c).Health() }))
	})
	api.GET("/clusters", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.timed("clusters", func() any { return snapshotOf(c).Groups() }))
	})
	return r
}

// observe logs each request and counts it by route template.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.cfg.Logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
	}
}

const snapshotKey = "snapshot"

// requireSnapshot pins the current snapshot for the request so a reload
// mid-request cannot mix two graphs.
func (s *Server) requireSnapshot() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.snapshot.Load()
		if snap == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "graph not loaded"})
			return
		}
		c.Set(snapshotKey, snap)
		c.Next()
	}
}

func snapshotOf(c *gin.Context) *blast.Snapshot {
	return c.MustGet(snapshotKey).(*blast.Snapshot)
}

// fileQuery builds a handler for an analysis keyed by one query parameter.
func (s *Server) fileQuery(param, name string, fn func(*blast.Snapshot, string) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query(param)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter: " + param})
			return
		}
		snap := snapshotOf(c)
		c.JSON(http.StatusOK, s.timed(name, func() any { return fn(snap, id) }))
	}
}

func (s *Server) timed(name string, fn func() any) any {
	start := time.Now()
	v := fn()
	s.metrics.analysis.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return v
}

func (s *Server) handleHealthz(c *gin.Context) {
	snap := s.snapshot.Load()
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": false})
		return
	}
	g := snap.Graph()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": true, "nodes": len(g.Nodes), "edges": len(g.Edges)})
}

func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.cfg.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.hub.serve(conn)
}
