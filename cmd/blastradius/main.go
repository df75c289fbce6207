// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command blastradius scans a repository into a dependency graph and
// answers blast-radius questions about it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/blastradius/internal/report"
	"github.com/petar-djukic/blastradius/pkg/blast"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blastradius",
		Short: "Dependency-graph blast radius for your codebase",
		Long: "blastradius builds a file-level dependency graph of a repository and reports which tests a change " +
			"affects, where a failing test's root cause likely lives, and where the graph is fragile.",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.String("workdir", ".", "Repository root directory")
	flags.String("graph", blast.DefaultGraphFile, "Graph file, relative to workdir unless absolute")
	flags.String("format", string(report.FormatText), "Output format: text, json, yaml")
	flags.Int("max-items", 10, "Maximum list items in text output (0 for all)")
	flags.Int("concurrency", 0, "Parallel parsers (0 for one per CPU)")
	flags.Bool("groups", false, "Cluster files into groups when scanning")
	flags.String("unit-test-cmd", "", "Runner for unit tests in suggested commands")
	flags.String("e2e-test-cmd", "", "Runner for end-to-end tests in suggested commands")
	flags.String("e2e-marker", "", "Path substring that marks end-to-end tests")
	flags.Duration("test-timeout", blast.DefaultTestTimeout, "Timeout for --run test commands")
	flags.BoolP("verbose", "v", false, "Debug logging")
	flags.String("log-format", "text", "Log format: text or json")

	// Bind flags to viper.
	for _, name := range []string{
		"workdir", "graph", "format", "max-items", "concurrency", "groups",
		"unit-test-cmd", "e2e-test-cmd", "e2e-marker", "test-timeout",
		"verbose", "log-format",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	// Env vars: BLASTRADIUS_WORKDIR, BLASTRADIUS_MAX_ITEMS, etc.
	viper.SetEnvPrefix("BLASTRADIUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".blastradius")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(
		newScanCmd(),
		newImpactCmd(),
		newFailingCmd(),
		newRefactorCmd(),
		newAnalyzeCmd(),
		newHealthCmd(),
		newClusterCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup validates output flags and installs the process logger.
func setup(cmd *cobra.Command, args []string) error {
	if _, err := report.ParseFormat(viper.GetString("format")); err != nil {
		return err
	}

	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch viper.GetString("log-format") {
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", viper.GetString("log-format"))
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// newEngine builds an Engine from the bound flags, env and config file.
func newEngine() (*blast.Engine, error) {
	e, err := blast.New(blast.Config{
		WorkDir:         viper.GetString("workdir"),
		GraphFile:       viper.GetString("graph"),
		Concurrency:     viper.GetInt("concurrency"),
		Groups:          viper.GetBool("groups"),
		UnitTestCommand: viper.GetString("unit-test-cmd"),
		E2ETestCommand:  viper.GetString("e2e-test-cmd"),
		E2EMarker:       viper.GetString("e2e-marker"),
		TestTimeout:     viper.GetDuration("test-timeout"),
		Logger:          slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	return e, nil
}

// output renders v to the command's stdout in the selected format.
func output(cmd *cobra.Command, v any) error {
	format, err := report.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), v, report.Options{
		Format:   format,
		MaxItems: viper.GetInt("max-items"),
	})
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print blastradius version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blastradius %s\n", version)
		},
	}
}
