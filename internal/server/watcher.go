// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/petar-djukic/blastradius/internal/scanner"
)

// Watch re-scans whenever a supported source file under Root changes,
// debouncing bursts of events into one reload. It blocks until ctx is
// cancelled. A failed reload is logged and the watch continues.
func (s *Server) Watch(ctx context.Context) error {
	if s.cfg.Reload == nil {
		return ErrNoReloader
	}
	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return fmt.Errorf("resolving watch root: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	n, err := addTree(w, root)
	if err != nil {
		return err
	}
	s.cfg.Logger.Info("watching for changes", "root", root, "dirs", n, "debounce", s.cfg.Debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(s.cfg.Debounce)
		} else {
			timer.Reset(s.cfg.Debounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if scanner.SkipDir(info.Name()) {
						continue
					}
					n, err := addTree(w, ev.Name)
					if err != nil {
						s.cfg.Logger.Warn("watching new directory", "dir", ev.Name, "error", err)
						continue
					}
					// A directory moved in arrives with its files already
					// present and produces no events for them.
					s.cfg.Logger.Debug("directory added", "dir", ev.Name, "dirs", n)
					schedule()
					continue
				}
			}
			if !relevant(ev) {
				continue
			}
			s.cfg.Logger.Debug("source changed", "file", ev.Name, "op", ev.Op.String())
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.cfg.Logger.Warn("watcher error", "error", err)

		case <-fire:
			fire = nil
			_ = s.Reload(ctx)
		}
	}
}

// relevant reports whether an event can change the graph. Chmod never does.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return scanner.Supported(filepath.Base(ev.Name))
}

// addTree watches dir and every directory below it the scanner would walk.
func addTree(w *fsnotify.Watcher, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && scanner.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		n++
		return nil
	})
	return n, err
}
