// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git discovers changed files in a working tree so their blast
// radius can be analyzed before committing.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoGit is returned when the working directory is not inside a git
// repository.
var ErrNoGit = errors.New("not a git repository")

// Config configures repository access.
type Config struct {
	WorkDir string // Directory the graph was scanned from; may be below the repository root
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo   *gogit.Repository
	cfg    Config
	prefix string // WorkDir relative to the repository root, slash-separated; "" at the root
}

// Open opens the git repository containing cfg.WorkDir. Returns ErrNoGit
// if there is none.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	prefix, err := relativePrefix(wt.Filesystem.Root(), cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	return &Repo{repo: r, cfg: cfg, prefix: prefix}, nil
}

func relativePrefix(root, workDir string) (string, error) {
	absRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving work directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absWork); err == nil {
		absWork = resolved
	}
	rel, err := filepath.Rel(absRoot, absWork)
	if err != nil {
		return "", fmt.Errorf("relating work directory to repository: %w", err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
func (r *Repo) IsDirty() (bool, error) {
	status, err := r.status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// ChangedFiles returns the modified, added, renamed and untracked files of
// the working tree, staged or not, as sorted slash paths relative to
// WorkDir. Deleted files and files outside WorkDir are omitted.
func (r *Repo) ChangedFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(status))
	for p, fs := range status {
		if fs.Worktree == gogit.Deleted {
			continue
		}
		if fs.Staging == gogit.Deleted && fs.Worktree != gogit.Untracked {
			continue
		}
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}
		if rel, ok := r.relative(p); ok {
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ChangedSince returns the files that differ between rev and HEAD, as
// sorted slash paths relative to WorkDir. Files deleted since rev are
// omitted.
func (r *Repo) ChangedSince(rev string) ([]string, error) {
	baseTree, err := r.tree(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	headTree, err := r.tree(plumbing.Revision(plumbing.HEAD))
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	seen := make(map[string]bool)
	files := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.To.Name
		if name == "" {
			continue
		}
		if rel, ok := r.relative(name); ok && !seen[rel] {
			seen[rel] = true
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *Repo) status() (gogit.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	return status, nil
}

func (r *Repo) tree(rev plumbing.Revision) (*object.Tree, error) {
	hash, err := r.repo.ResolveRevision(rev)
	if err != nil {
		return nil, err
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// relative converts a repository path to a WorkDir-relative one.
func (r *Repo) relative(repoPath string) (string, bool) {
	repoPath = filepath.ToSlash(repoPath)
	if r.prefix == "" {
		return repoPath, true
	}
	if !strings.HasPrefix(repoPath, r.prefix+"/") {
		return "", false
	}
	return strings.TrimPrefix(repoPath, r.prefix+"/"), true
}
