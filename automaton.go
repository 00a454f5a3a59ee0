// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package ndcell implements an N-dimensional cellular-automaton
// simulation core: a hash-consed, HashLife-style memoized ND-tree over
// an unbounded integer lattice, driven by a locally-defined Rule (spec
// OVERVIEW). It exposes the tree, a projection surface for viewing a
// high-dimensional universe through a low-dimensional slice, and a
// minimal pattern-I/O contract; it does not render, parse textual
// pattern formats, or interpret an embedded rule-description language
// (spec Non-goals).
package ndcell

import (
	"context"
	"math/big"

	"github.com/gaissmai/ndcell/internal/arena"
	"github.com/gaissmai/ndcell/internal/coord"
	"github.com/gaissmai/ndcell/internal/hashlife"
	"github.com/gaissmai/ndcell/internal/rule"
	"github.com/gaissmai/ndcell/internal/tree"
)

// Options configures resource bounds and construction-time behavior for
// an Automaton (spec §4.6, ambient-stack config-via-constructor-options
// convention). The zero value is a usable, unbounded configuration.
type Options struct {
	// ArenaSoftCap/ArenaHardCap bound the node arena's live-node count
	// (spec §5); zero disables the corresponding cap.
	ArenaSoftCap int64
	ArenaHardCap int64
}

// Automaton is the public façade over a single ND-tree universe and the
// Rule currently driving it (spec §4.6). It is not safe for concurrent
// mutation; concurrent read-only access (GetCell, Population, Generation)
// is safe alongside other readers but not alongside a mutating call,
// matching the tree's single-writer/multi-reader discipline. BoundingBox
// shrinks the tree's root in place and so counts as a mutating call.
type Automaton struct {
	arena *arena.Arena
	tree  *tree.Tree
	ndim  int

	rule   rule.Rule
	engine *hashlife.Engine

	generation *big.Int
}

// NewAutomaton constructs an empty universe over ndim axes (1..6), ready
// to simulate under r (spec §4.6). It returns ErrUnsupportedDimension or
// ErrInvalidRule for malformed inputs.
func NewAutomaton(ndim int, r Rule, opts Options) (*Automaton, error) {
	if ndim < 1 || ndim > coord.MaxDim {
		return nil, ErrUnsupportedDimension
	}
	if err := rule.Validate(r); err != nil {
		return nil, err
	}
	if r.NDim() != ndim {
		return nil, ErrInvalidRule
	}

	a := arena.New(ndim, arena.Options{SoftCap: opts.ArenaSoftCap, HardCap: opts.ArenaHardCap})
	eng, err := hashlife.New(a, r)
	if err != nil {
		return nil, err
	}

	return &Automaton{
		arena:      a,
		tree:       tree.New(a, ndim),
		ndim:       ndim,
		rule:       r,
		engine:     eng,
		generation: new(big.Int),
	}, nil
}

// NDim returns the automaton's lattice dimension.
func (au *Automaton) NDim() int { return au.ndim }

// Rule returns the automaton's current rule.
func (au *Automaton) Rule() Rule { return au.rule }

// Generation returns the total number of generations simulated so far.
func (au *Automaton) Generation() *big.Int { return new(big.Int).Set(au.generation) }

// Population returns the universe's current live-cell count.
func (au *Automaton) Population() *big.Int { return au.tree.Population() }

// GetCell returns the state at p (spec §4.6); positions outside the
// tree's current footprint read as 0, the default state.
func (au *Automaton) GetCell(p coord.World) uint8 { return au.tree.GetCell(p) }

// SetCell writes state at p, growing the universe as needed (spec §4.6).
// It returns ErrStateOutOfRange if state is not below the active rule's
// declared state count, and ErrArenaExhausted if the arena's hard
// resource cap is exceeded by the write.
func (au *Automaton) SetCell(p coord.World, state uint8) error {
	if int(state) >= au.rule.StateCount() {
		return ErrStateOutOfRange
	}
	au.tree.SetCell(p, state)
	return au.arena.CheckBudget()
}

// BoundingBox returns the smallest axis-aligned rectangle the current
// tree footprint is known to fully contain the live pattern within,
// after shrinking away any empty outer layers (spec §4.6). It may be
// slightly larger than the tightest possible box around individual live
// cells -- Shrink only trims whole-quadrant empty margins -- but it
// never omits a live cell.
func (au *Automaton) BoundingBox() coord.Rect {
	au.tree.Shrink()
	low := au.tree.Offset()
	side := au.tree.Root().Side()
	high := coord.NewWorld(au.ndim)
	one := big.NewInt(1)
	for i := 0; i < au.ndim; i++ {
		high.V[i].Add(low.V[i], side)
		high.V[i].Sub(high.V[i], one)
	}
	return coord.Rect{Low: low, High: high}
}

// SetRule replaces the automaton's active rule, atomically invalidating
// every cached HashLife result (spec §4.5, §4.6 set_rule). It returns
// ErrInvalidRule if r's parameters are self-inconsistent or its
// dimension does not match the automaton's.
func (au *Automaton) SetRule(r Rule) error {
	if err := rule.Validate(r); err != nil {
		return err
	}
	if r.NDim() != au.ndim {
		return ErrInvalidRule
	}
	eng, err := hashlife.New(au.arena, r)
	if err != nil {
		return err
	}
	au.rule = r
	au.engine = eng
	au.arena.BumpEpoch()
	return nil
}

// Step advances the universe by exactly n generations (spec §4.6). It
// returns ErrUnsupportedStepDirection for a negative n, ErrCancelled if
// ctx is done before n generations have fully committed, and
// ErrRuleOutputOutOfRange or ErrRuleFailure if the rule misbehaves
// partway through, and ErrArenaExhausted if the arena is already over its
// hard cap (after a soft-cap sweep) when Step is called -- in every error
// case the automaton is left exactly as it was before Step was called;
// no partially-applied chunk is ever committed.
func (au *Automaton) Step(ctx context.Context, n *big.Int) error {
	if n.Sign() < 0 {
		return ErrUnsupportedStepDirection
	}
	if err := au.arena.CheckBudget(); err != nil {
		return err
	}
	if err := au.engine.Advance(ctx, au.tree, n); err != nil {
		return err
	}
	au.generation.Add(au.generation, n)
	return nil
}
