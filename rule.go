// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import "github.com/gaissmai/ndcell/internal/rule"

// Neighborhood is the dense hypercube of current cell states the step
// engine hands to a Rule's Transition (spec §4.4).
type Neighborhood = rule.Neighborhood

// NewNeighborhood allocates a zeroed neighborhood cube, exported mainly
// so Rule implementations outside this module can build fixtures for
// their own tests.
func NewNeighborhood(ndim, radius int) *Neighborhood { return rule.NewNeighborhood(ndim, radius) }

// Rule is the abstract local transition function an Automaton runs (spec
// §4.4). The engine extracts a Neighborhood around each cell and calls
// Transition; it never inspects or compiles a rule's description, so any
// type satisfying this interface -- table-driven, procedural, or backed
// by an embedded rule-description language outside this module's scope
// -- works identically.
type Rule = rule.Rule

// IdentityRule is a no-op Rule: every cell keeps its current state
// forever. Useful as a default/placeholder and in tests that only
// exercise tree mechanics, not simulation.
type IdentityRule = rule.Identity
