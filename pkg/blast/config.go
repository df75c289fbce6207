// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package blast is the public interface of blastradius: scan a repository
// into a dependency graph, persist it, and answer blast-radius questions
// against an immutable snapshot of it.
package blast

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/petar-djukic/blastradius/internal/analysis"
)

// ErrInvalidConfig is returned by New when the config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultGraphFile   = ".blastradius/graph.json"
	DefaultTestTimeout = 120 * time.Second
)

// Config configures an Engine.
//
// WorkDir is the repository root and must exist. GraphFile is where the
// scanned graph is saved; relative paths are under WorkDir. Concurrency
// bounds parallel parsing, with 0 meaning NumCPU. The test command fields
// feed the refactor analysis' suggested command.
type Config struct {
	WorkDir         string        `validate:"required,dir"`
	GraphFile       string        `validate:"required"`
	Concurrency     int           `validate:"gte=0"`
	Groups          bool          // Cluster files at scan time
	UnitTestCommand string        // Default "npx vitest run"
	E2ETestCommand  string        // Default "npx playwright test"
	E2EMarker       string        // Default "e2e"
	TestTimeout     time.Duration `validate:"gte=0"`
	Logger          *slog.Logger  `validate:"-"`
}

var validate = validator.New()

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.GraphFile == "" {
		cfg.GraphFile = DefaultGraphFile
	}
	if cfg.UnitTestCommand == "" {
		cfg.UnitTestCommand = analysis.DefaultUnitTestCommand
	}
	if cfg.E2ETestCommand == "" {
		cfg.E2ETestCommand = analysis.DefaultE2ETestCommand
	}
	if cfg.E2EMarker == "" {
		cfg.E2EMarker = analysis.DefaultE2EMarker
	}
	if cfg.TestTimeout == 0 {
		cfg.TestTimeout = DefaultTestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// validateConfig runs the struct tag rules and flattens failures into one
// message per field.
func validateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "dir":
			msgs = append(msgs, fmt.Sprintf("%s %q does not exist or is not a directory", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (c Config) refactorOptions() analysis.RefactorOptions {
	return analysis.RefactorOptions{
		UnitTestCommand: c.UnitTestCommand,
		E2ETestCommand:  c.E2ETestCommand,
		E2EMarker:       c.E2EMarker,
	}
}

// GraphPath returns the absolute location of the saved graph.
func (c Config) GraphPath() string {
	if filepath.IsAbs(c.GraphFile) {
		return c.GraphFile
	}
	return filepath.Join(c.WorkDir, c.GraphFile)
}
