// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package arena implements the canonical node store: the hash-consing
// interner that gives every distinct ND-tree node a stable identity, plus
// the opportunistic per-node HashLife result slot (spec §4.2, §4.5).
//
// Interning uses weak references (the standard library's weak package),
// the same hash-consing idiom rogpeppe/generic's anyunique package uses:
// a node that nothing else references becomes eligible for garbage
// collection on its own, with no explicit reference counting required.
// Node liveness bookkeeping rides on runtime.AddCleanup rather than a
// manual sweep over live roots (spec design notes: "reference counting
// or tracing GC both work").
package arena

import (
	"fmt"
	"math/big"
	"sync/atomic"
	"weak"
)

// Node is a canonical, immutable ND-tree node: either a Leaf (Layer == 0,
// one cell state) or a Branch (Layer >= 1, 2^NDim children at Layer-1).
//
// Nodes are never mutated after construction; "editing" a node means
// interning a new one and letting the old one become unreferenced.
type Node struct {
	id    uint64
	ndim  int
	layer int

	// leaf payload, meaningful only when layer == 0.
	state uint8

	// branch payload, meaningful only when layer >= 1. Always has exactly
	// 1<<ndim entries, each a canonical node at layer-1.
	children []*Node

	population *big.Int
	empty      bool

	// result is the opportunistic HashLife result slot (spec §4.5): the
	// node's canonical transition, advanced 2^(layer-base) generations
	// where base is the step engine's base layer (2 for radius <= 1),
	// computed lazily and cached against a rule epoch. Swapped atomically
	// so concurrent step-engine workers racing to fill it agree on one
	// winner without a mutex.
	result atomic.Pointer[resultSlot]
}

type resultSlot struct {
	epoch uint64
	ptr   weak.Pointer[Node]
}

// ID returns a stable, process-local numeric identity for the node.
// Two nodes have the same ID if and only if they are the same canonical
// node (spec §3 "identity equality ⇔ structural equality").
func (n *Node) ID() uint64 { return n.id }

// NDim returns the node's lattice dimension.
func (n *Node) NDim() int { return n.ndim }

// Layer returns the node's layer: 0 for a leaf, >=1 for a branch.
func (n *Node) Layer() int { return n.layer }

// IsLeaf reports whether n is a layer-0 leaf.
func (n *Node) IsLeaf() bool { return n.layer == 0 }

// State returns the leaf's cell state. It panics if n is not a leaf,
// which is a programming-bug condition (spec §7).
func (n *Node) State() uint8 {
	if n.layer != 0 {
		panic("arena: State called on a branch node")
	}
	return n.state
}

// Child returns child i (0 <= i < 2^NDim) of a branch node. It panics on
// an out-of-range index or when called on a leaf.
func (n *Node) Child(i uint) *Node {
	if n.layer == 0 {
		panic("arena: Child called on a leaf node")
	}
	return n.children[i]
}

// Children returns the node's child slice directly. Callers must not
// mutate it; it is shared by every reference to this canonical node.
func (n *Node) Children() []*Node {
	if n.layer == 0 {
		panic("arena: Children called on a leaf node")
	}
	return n.children
}

// Population returns the count of non-default cells under n.
func (n *Node) Population() *big.Int { return new(big.Int).Set(n.population) }

// IsEmpty reports whether n's population is zero (spec §3, §8).
func (n *Node) IsEmpty() bool { return n.empty }

// Side returns 2^Layer, the node's footprint side length in cells.
func (n *Node) Side() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n.layer))
}

func (n *Node) String() string {
	if n.layer == 0 {
		return fmt.Sprintf("leaf(state=%d)", n.state)
	}
	return fmt.Sprintf("branch(layer=%d, ndim=%d, pop=%s)", n.layer, n.ndim, n.population)
}

// GetResult returns the node's cached HashLife result if one was computed
// under the given rule epoch and has not since been garbage collected.
// The epoch comparison makes a rule change invalidate every result slot
// in O(1): Arena.BumpEpoch need not walk any nodes (spec §4.5 "changing
// the rule must atomically clear all result slots").
func (n *Node) GetResult(epoch uint64) (*Node, bool) {
	slot := n.result.Load()
	if slot == nil || slot.epoch != epoch {
		return nil, false
	}
	r := slot.ptr.Value()
	if r == nil {
		return nil, false
	}
	return r, true
}

// SetResult opportunistically populates the result slot. The stored
// reference is weak (spec §4.2): holding a cached result must not, by
// itself, keep that result node alive.
func (n *Node) SetResult(epoch uint64, result *Node) {
	n.result.Store(&resultSlot{epoch: epoch, ptr: weak.Make(result)})
}
