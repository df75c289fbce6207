// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package testrun executes a suggested test command and reports its outcome.
package testrun

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Config configures a test run.
type Config struct {
	WorkDir string        // Directory the command runs in
	Command string        // Full command line, split on whitespace; empty skips the run
	Timeout time.Duration // Default 120s
}

// Result holds the outcome of a test run.
type Result struct {
	Command  string        `json:"command" yaml:"command"`
	Skipped  bool          `json:"skipped" yaml:"skipped"`
	Passed   bool          `json:"passed" yaml:"passed"`
	TimedOut bool          `json:"timedOut" yaml:"timedOut"`
	ExitCode int           `json:"exitCode" yaml:"exitCode"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Output   string        `json:"output" yaml:"output"`
	Failures []string      `json:"failures" yaml:"failures"` // Test files the runner reported as failing
	Err      string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run executes cfg.Command with a timeout and captures combined output.
// It never returns nil; launch failures are reported in Result.Err.
func Run(ctx context.Context, cfg Config) *Result {
	result := &Result{Command: cfg.Command, Failures: []string{}}

	parts := strings.Fields(cfg.Command)
	if len(parts) == 0 {
		result.Skipped = true
		result.Passed = true
		return result
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	start := time.Now()
	out, err := runCommand(ctx, cfg.WorkDir, timeout, parts[0], parts[1:]...)
	result.Duration = time.Since(start)
	result.Output = out
	result.Failures = parseFailures(out)
	result.Passed = err == nil

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = -1
		result.Err = err.Error()
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		result.Err = err.Error()
	}
	return result
}

// runCommand executes a command with a timeout and captures combined output.
// A command killed by the timeout reports context.DeadlineExceeded.
func runCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err != nil && cmdCtx.Err() == context.DeadlineExceeded {
		return buf.String(), context.DeadlineExceeded
	}
	return buf.String(), err
}

// failLine matches the per-file failure lines of common runners:
//
//	FAIL src/cart.test.ts > adds item      (vitest, jest)
//	FAIL	example.com/app/store	0.01s      (go test)
//	FAILED tests/test_cart.py::test_add    (pytest)
var failLine = regexp.MustCompile(`^\s*(?:FAIL|FAILED|×|✗)\s+([^\s:]+)`)

func parseFailures(output string) []string {
	seen := make(map[string]bool)
	failures := []string{}
	for _, line := range strings.Split(output, "\n") {
		m := failLine.FindStringSubmatch(line)
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		failures = append(failures, m[1])
	}
	return failures
}
