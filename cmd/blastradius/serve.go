// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/blastradius/internal/server"
	"github.com/petar-djukic/blastradius/pkg/blast"
)

// newServeCmd creates the "serve" command.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph and analyses over HTTP",
		Long: "Serve exposes the graph and every analysis as JSON under /api, pushes reload events on /ws " +
			"and, with --watch, re-scans whenever a source file changes.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", server.DefaultAddr, "Listen address")
	cmd.Flags().Bool("watch", false, "Re-scan on source changes")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	snap, err := initialSnapshot(ctx, e)
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	addr, _ := cmd.Flags().GetString("addr")
	watch, _ := cmd.Flags().GetBool("watch")
	srv := server.New(server.Config{
		Addr:     addr,
		Root:     e.Config().WorkDir,
		Snapshot: snap,
		Reload:   e.Rescan,
		Logger:   slog.Default(),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	if watch {
		g.Go(func() error { return srv.Watch(ctx) })
	}
	return g.Wait()
}

// initialSnapshot loads the saved graph, scanning first when none exists.
func initialSnapshot(ctx context.Context, e *blast.Engine) (*blast.Snapshot, error) {
	s, err := e.Load()
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	slog.Info("no saved graph, scanning", "workdir", e.Config().WorkDir)
	return e.Rescan(ctx)
}
