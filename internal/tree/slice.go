// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tree

import (
	"iter"
	"math/big"

	"github.com/gaissmai/ndcell/internal/arena"
	"github.com/gaissmai/ndcell/internal/coord"
)

// Blend selects how Paste combines source and destination cells (spec
// §4.3).
type Blend int

const (
	// Overwrite replaces every cell of the destination rectangle with
	// the corresponding source cell, including zeroing cells the source
	// leaves at the default state.
	Overwrite Blend = iota
	// OrNonzero replaces only destination cells whose source is
	// non-default; destination cells with a default-state source are
	// left unchanged.
	OrNonzero
)

// Enumerate yields every non-default (position, state) pair of t whose
// position lies within r (spec §4.8). Iteration order is a depth-first
// walk of the tree and is not otherwise specified.
func (t *Tree) Enumerate(r coord.Rect) iter.Seq2[coord.World, uint8] {
	return enumerateNode(t.root, t.ndim, t.offset, r)
}

// enumerateNode yields the non-default cells of n, whose footprint's low
// corner sits at nodeOffset in world coordinates, restricted to r.
func enumerateNode(n *arena.Node, ndim int, nodeOffset coord.World, r coord.Rect) iter.Seq2[coord.World, uint8] {
	return func(yield func(coord.World, uint8) bool) {
		if n.IsEmpty() {
			return
		}
		nodeHigh := coord.NewWorld(ndim)
		side := n.Side()
		for i := 0; i < ndim; i++ {
			nodeHigh.V[i].Add(nodeOffset.V[i], side)
			nodeHigh.V[i].Sub(nodeHigh.V[i], big.NewInt(1))
		}
		nodeRect := coord.Rect{Low: nodeOffset, High: nodeHigh}
		if !nodeRect.Intersects(r) {
			return
		}
		if n.IsLeaf() {
			if r.Contains(nodeOffset) {
				if !yield(nodeOffset.Clone(), n.State()) {
					return
				}
			}
			return
		}
		for i := uint(0); i < uint(1<<uint(ndim)); i++ {
			childOff := coord.ChildOffset(i, ndim, n.Layer())
			childWorld := coord.NewWorld(ndim)
			for a := 0; a < ndim; a++ {
				childWorld.V[a].Add(nodeOffset.V[a], big.NewInt(childOff[a]))
			}
			ok := true
			enumerateNode(n.Child(i), ndim, childWorld, r)(func(p coord.World, s uint8) bool {
				ok = yield(p, s)
				return ok
			})
			if !ok {
				return
			}
		}
	}
}

// clearRect zeroes every currently non-default cell within r (used by
// Paste's Overwrite blend); cells outside r are untouched.
func (t *Tree) clearRect(r coord.Rect) {
	var pts []coord.World
	for p := range t.Enumerate(r) {
		pts = append(pts, p)
	}
	for _, p := range pts {
		t.SetCell(p, 0)
	}
}

// Paste writes src, whose own local origin is treated as world position
// srcOrigin, into t translated so srcOrigin lands at destOffset, blended
// per blend (spec §4.3, §4.8).
func (t *Tree) Paste(src *arena.Node, srcOrigin, destOffset coord.World, blend Blend) {
	side := src.Side()
	full := coord.NewWorld(t.ndim)
	for i := 0; i < t.ndim; i++ {
		full.V[i].Add(srcOrigin.V[i], side)
		full.V[i].Sub(full.V[i], big.NewInt(1))
	}
	srcRect := coord.Rect{Low: srcOrigin, High: full}

	delta := destOffset.Sub(srcOrigin)

	if blend == Overwrite {
		destFull := coord.NewWorld(t.ndim)
		for i := 0; i < t.ndim; i++ {
			destFull.V[i].Add(destOffset.V[i], side)
			destFull.V[i].Sub(destFull.V[i], big.NewInt(1))
		}
		t.clearRect(coord.Rect{Low: destOffset, High: destFull})
	}

	for p, s := range enumerateNode(src, t.ndim, srcOrigin, srcRect) {
		t.SetCell(p.Add(delta), s)
	}
}

// PasteStream writes a stream of (position, state) pairs already
// expressed in destination world coordinates into t, blended per blend
// (spec §4.8's minimal pattern-I/O write contract). With Overwrite every
// streamed pair is written, default states included; with OrNonzero
// pairs with the default state are skipped. Cells the stream does not
// mention are left unchanged under either blend.
func (t *Tree) PasteStream(cells iter.Seq2[coord.World, uint8], blend Blend) {
	if blend == Overwrite {
		var pts []coord.World
		var states []uint8
		for p, s := range cells {
			pts = append(pts, p)
			states = append(states, s)
		}
		for i, p := range pts {
			t.SetCell(p, states[i])
		}
		return
	}
	for p, s := range cells {
		if s != 0 {
			t.SetCell(p, s)
		}
	}
}

// Slice extracts the minimal covering subtree for r: a fresh,
// independently-rooted node together with the world offset of that
// node's low corner, containing exactly t's cells within r (spec §4.3).
// It is built by replaying Enumerate into a scratch tree rather than
// splitting t's existing structure in place, trading a little work for a
// much simpler and still fully canonical implementation. The returned
// offset must be passed back as srcOrigin to Paste to reposition the
// slice correctly; it is not guaranteed to equal r.Low.
func (t *Tree) Slice(r coord.Rect) (*arena.Node, coord.World) {
	scratch := New(t.arena, t.ndim)
	for p, s := range t.Enumerate(r) {
		local := p.Sub(r.Low)
		scratch.SetCell(local, s)
	}
	scratch.Shrink()
	return scratch.Root(), scratch.Offset().Add(r.Low)
}
