// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ValidRepo(t *testing.T) {
	dir := initTestRepo(t)

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)
	assert.NotNil(t, repo)
	assert.Equal(t, "", repo.prefix)
}

func TestOpen_Subdirectory(t *testing.T) {
	dir := initTestRepo(t)
	sub := filepath.Join(dir, "web")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, err := Open(Config{WorkDir: sub})
	require.NoError(t, err)
	assert.Equal(t, "web", repo.prefix)
}

func TestOpen_NotARepo(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(Config{WorkDir: dir})
	assert.ErrorIs(t, err, ErrNoGit)
}

func TestIsDirty_CleanRepo(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestIsDirty_WithUnstagedChanges(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	// Modify a tracked file.
	writeFile(t, dir, "main.go", "package main\n\nfunc main() { /* modified */ }\n")

	dirty, err := repo.IsDirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestChangedFiles_CleanRepo(t *testing.T) {
	dir := initTestRepo(t)
	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	files, err := repo.ChangedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NotNil(t, files)
}

func TestChangedFiles_ModifiedStagedAndUntracked(t *testing.T) {
	dir := initTestRepo(t)
	addFileAndCommit(t, dir, "lib/util.go", "package lib\n", "add util")
	addFileAndCommit(t, dir, "lib/old.go", "package lib\n", "add old")

	writeFile(t, dir, "main.go", "package main\n\nfunc main() { println() }\n")
	writeFile(t, dir, "lib/new.go", "package lib\n\nfunc New() {}\n")
	writeFile(t, dir, "lib/staged.go", "package lib\n")
	stage(t, dir, "lib/staged.go")
	require.NoError(t, os.Remove(filepath.Join(dir, "lib/old.go")))

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	files, err := repo.ChangedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/new.go", "lib/staged.go", "main.go"}, files)
}

func TestChangedFiles_RelativeToWorkDir(t *testing.T) {
	dir := initTestRepo(t)
	addFileAndCommit(t, dir, "web/src/app.ts", "export {}\n", "add app")

	writeFile(t, dir, "web/src/app.ts", "export const x = 1;\n")
	writeFile(t, dir, "main.go", "package main\n\nfunc main() { println() }\n")

	repo, err := Open(Config{WorkDir: filepath.Join(dir, "web")})
	require.NoError(t, err)

	files, err := repo.ChangedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.ts"}, files)
}

func TestChangedSince(t *testing.T) {
	dir := initTestRepo(t)
	base := headHash(t, dir)

	addFileAndCommit(t, dir, "lib/a.go", "package lib\n", "add a")
	addFileAndCommit(t, dir, "main.go", "package main\n\nfunc main() { println() }\n", "touch main")

	repo, err := Open(Config{WorkDir: dir})
	require.NoError(t, err)

	files, err := repo.ChangedSince(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/a.go", "main.go"}, files)

	files, err = repo.ChangedSince("HEAD")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = repo.ChangedSince("no-such-branch")
	assert.Error(t, err)
}

// initTestRepo creates a temp dir with a git repo, an initial commit, and
// returns the directory path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	addFileAndCommit(t, dir, "main.go", "package main\n\nfunc main() {}\n", "initial commit")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func stage(t *testing.T, dir, name string) {
	t.Helper()
	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
}

// addFileAndCommit adds a file and creates a commit with the given message.
func addFileAndCommit(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	writeFile(t, dir, name, content)
	stage(t, dir, name)

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func headHash(t *testing.T, dir string) string {
	t.Helper()
	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	return head.Hash().String()
}
