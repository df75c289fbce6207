// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package analysis

import (
	"errors"
	"fmt"

	"github.com/petar-djukic/blastradius/internal/graph"
	"github.com/petar-djukic/blastradius/pkg/types"
)

// ErrUnknownMode is returned for a mode other than failing or refactor.
var ErrUnknownMode = errors.New("unknown analysis mode")

// ParseMode converts a user-supplied mode name.
func ParseMode(s string) (types.Mode, error) {
	switch types.Mode(s) {
	case types.ModeFailing, types.ModeRefactor:
		return types.Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Analyze runs the per-file analysis selected by mode.
func Analyze(idx *graph.Index, mode types.Mode, id string, opts RefactorOptions) (types.Analysis, error) {
	switch mode {
	case types.ModeFailing:
		return FailingTest(idx, id), nil
	case types.ModeRefactor:
		return Refactor(idx, id, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
