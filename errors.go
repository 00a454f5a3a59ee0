// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import (
	"errors"

	"github.com/gaissmai/ndcell/internal/arena"
	"github.com/gaissmai/ndcell/internal/hashlife"
	"github.com/gaissmai/ndcell/internal/rule"
)

// Sentinel errors returned by this package's public API (spec §7). Those
// detected inside an internal package are aliased from it, so errors.Is
// works identically whether the caller compares against the ndcell value
// or (if it ever leaked) the internal one; ErrStateOutOfRange,
// ErrUnsupportedDimension and ErrProjectionShapeMismatch are detected and
// defined in this package.
var (
	// ErrStateOutOfRange is returned by SetCell when the given state is
	// not less than the automaton's rule's declared state count.
	ErrStateOutOfRange = errors.New("ndcell: cell state out of range for the active rule")

	// ErrUnsupportedDimension is returned by NewAutomaton when ndim is
	// outside 1..6.
	ErrUnsupportedDimension = errors.New("ndcell: unsupported lattice dimension")

	// ErrUnsupportedStepDirection is returned by Step for a negative
	// generation count.
	ErrUnsupportedStepDirection = hashlife.ErrUnsupportedStepDirection

	// ErrInvalidRule is returned by NewAutomaton or SetRule when a Rule's
	// declared parameters are self-inconsistent.
	ErrInvalidRule = rule.ErrInvalidRule

	// ErrProjectionShapeMismatch is returned by a Projection's
	// configuration calls when the slice vector, axis permutation, or
	// flip set does not match the underlying automaton's dimension.
	ErrProjectionShapeMismatch = errors.New("ndcell: projection parameters do not match automaton dimension")

	// ErrRuleOutputOutOfRange is returned by Step when a Rule's
	// Transition yields a state outside its own declared state count.
	ErrRuleOutputOutOfRange = hashlife.ErrRuleOutputOutOfRange

	// ErrRuleFailure wraps a panic recovered from a Rule during Step.
	ErrRuleFailure = hashlife.ErrRuleFailure

	// ErrCancelled is returned by Step when its context is cancelled
	// before the requested generation count is reached. No partial
	// generation is ever committed; the automaton is left exactly as it
	// was before Step was called, even if some chunks had already been
	// computed against a private working copy.
	ErrCancelled = hashlife.ErrCancelled

	// ErrArenaExhausted is returned when the node arena's hard resource
	// cap is exceeded even after a garbage sweep.
	ErrArenaExhausted = arena.ErrExhausted
)
