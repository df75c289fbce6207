// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package testrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_EmptyCommandSkips(t *testing.T) {
	r := Run(context.Background(), Config{Command: "   "})

	assert.True(t, r.Skipped)
	assert.True(t, r.Passed)
	assert.Empty(t, r.Output)
	assert.NotNil(t, r.Failures)
}

func TestRun_Success(t *testing.T) {
	r := Run(context.Background(), Config{WorkDir: t.TempDir(), Command: "echo ok"})

	assert.False(t, r.Skipped)
	assert.True(t, r.Passed)
	assert.Equal(t, 0, r.ExitCode)
	assert.Equal(t, "ok\n", r.Output)
	assert.Empty(t, r.Err)
}

func TestRun_NonZeroExit(t *testing.T) {
	r := Run(context.Background(), Config{WorkDir: t.TempDir(), Command: "false"})

	assert.False(t, r.Passed)
	assert.False(t, r.TimedOut)
	assert.Equal(t, 1, r.ExitCode)
	assert.Empty(t, r.Err)
}

func TestRun_RunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), nil, 0o644))

	r := Run(context.Background(), Config{WorkDir: dir, Command: "ls"})

	assert.True(t, r.Passed)
	assert.Contains(t, r.Output, "marker.txt")
}

func TestRun_Timeout(t *testing.T) {
	r := Run(context.Background(), Config{WorkDir: t.TempDir(), Command: "sleep 5", Timeout: 50 * time.Millisecond})

	assert.False(t, r.Passed)
	assert.True(t, r.TimedOut)
	assert.Equal(t, -1, r.ExitCode)
	assert.Less(t, r.Duration, 5*time.Second)
}

func TestRun_MissingBinary(t *testing.T) {
	r := Run(context.Background(), Config{WorkDir: t.TempDir(), Command: "blastradius-no-such-runner --flag"})

	assert.False(t, r.Passed)
	assert.Equal(t, -1, r.ExitCode)
	assert.NotEmpty(t, r.Err)
}

func TestParseFailures(t *testing.T) {
	output := ` ✓ src/ok.test.ts (2 tests)
 FAIL src/cart.test.ts > adds item
 FAIL src/cart.test.ts > removes item
--- FAIL: TestOpen (0.00s)
FAIL	example.com/app/store	0.012s
FAILED tests/test_cart.py::test_add - AssertionError
FAIL
`
	assert.Equal(t, []string{"src/cart.test.ts", "example.com/app/store", "tests/test_cart.py"}, parseFailures(output))
	assert.Equal(t, []string{}, parseFailures("all good\n"))
}
