// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package tree implements the ND-tree (spec §4.3): a pair of canonical
// root node and world offset, with on-demand growth, path rewriting, and
// shrink-to-canonical-form. All reads/writes and their arithmetic are
// grounded on the teacher's (gaissmai/bart) getChild/insertAtDepth/
// cloneFlat style of path-following mutation, generalized from an
// 8-bit-stride byte trie to an N-bit-stride ND-tree.
package tree

import (
	"math/big"

	"github.com/gaissmai/ndcell/internal/arena"
	"github.com/gaissmai/ndcell/internal/coord"
)

// Tree is an immutable-node, mutable-root ND-tree: (root, offset), where
// offset is the world coordinate of the root's low corner (spec §3).
//
// A Tree is not safe for concurrent mutation; it follows the same
// single-writer/multi-reader discipline as the teacher's Table type.
type Tree struct {
	arena  *arena.Arena
	ndim   int
	root   *arena.Node
	offset coord.World
}

// New creates an empty Tree over ndim axes backed by the given arena. The
// root starts at layer 1 (the smallest branch layer) centered on the
// origin.
func New(a *arena.Arena, ndim int) *Tree {
	root := a.Empty(1)
	off := coord.NewWorld(ndim)
	for i := 0; i < ndim; i++ {
		off.V[i].SetInt64(-1)
	}
	return &Tree{arena: a, ndim: ndim, root: root, offset: off}
}

// Arena returns the tree's backing node arena.
func (t *Tree) Arena() *arena.Arena { return t.arena }

// NDim returns the tree's lattice dimension.
func (t *Tree) NDim() int { return t.ndim }

// Root returns the tree's current canonical root node.
func (t *Tree) Root() *arena.Node { return t.root }

// Offset returns the world coordinate of the root's low corner.
func (t *Tree) Offset() coord.World { return t.offset.Clone() }

// FromRoot builds a Tree directly from an already-canonical root and its
// world offset, bypassing New's empty-root construction. Used by the step
// engine to publish a freshly time-advanced root without re-deriving it
// from individual cell writes (spec §4.5).
func FromRoot(a *arena.Arena, ndim int, root *arena.Node, offset coord.World) *Tree {
	return &Tree{arena: a, ndim: ndim, root: root, offset: offset}
}

// ReplaceRoot atomically swaps t's root and offset, used by the step
// engine once it has computed a new canonical root spanning the same
// universe at a later generation (spec §4.5).
func (t *Tree) ReplaceRoot(root *arena.Node, offset coord.World) {
	t.root = root
	t.offset = offset
}

// Clone returns an independent Tree sharing the same root node (spec §3
// "splitting/forking produces independent trees sharing nodes
// transparently"); no node is copied.
func (t *Tree) Clone() *Tree {
	return &Tree{arena: t.arena, ndim: t.ndim, root: t.root, offset: t.offset.Clone()}
}

// Population returns the tree's total non-default cell count.
func (t *Tree) Population() *big.Int { return t.root.Population() }

// footprintHigh returns the world coordinate just past the root's high
// corner along every axis, i.e. offset + 2^layer.
func (t *Tree) footprintHigh() coord.World {
	side := t.root.Side()
	high := coord.NewWorld(t.ndim)
	for i := 0; i < t.ndim; i++ {
		high.V[i].Add(t.offset.V[i], side)
	}
	return high
}

// inBounds reports whether p lies within [offset, offset+side) on every
// axis.
func (t *Tree) inBounds(p coord.World) bool {
	high := t.footprintHigh()
	for i := 0; i < t.ndim; i++ {
		if p.V[i].Cmp(t.offset.V[i]) < 0 || p.V[i].Cmp(high.V[i]) >= 0 {
			return false
		}
	}
	return true
}

// localOf converts a world position already known to be in bounds into a
// Local vector relative to the root's low corner.
func (t *Tree) localOf(p coord.World) coord.Local {
	var l coord.Local
	for i := 0; i < t.ndim; i++ {
		d := new(big.Int).Sub(p.V[i], t.offset.V[i])
		l[i] = d.Int64()
	}
	return l
}

// GetCell returns the state at p, or 0 if p lies outside the root's
// current footprint (spec §4.3, §8 "boundary behaviors").
func (t *Tree) GetCell(p coord.World) uint8 {
	if !t.inBounds(p) {
		return 0
	}
	return getCellLocal(t.root, t.ndim, t.localOf(p))
}

func getCellLocal(n *arena.Node, ndim int, local coord.Local) uint8 {
	for n.Layer() > 0 {
		idx := coord.CornerBits(local, ndim, n.Layer())
		local = local.Sub(coord.ChildOffset(idx, ndim, n.Layer()))
		n = n.Child(idx)
	}
	return n.State()
}

// SetCell grows the root as needed so p is in bounds, then rewrites the
// path to p's leaf, re-interning every ancestor along the way (spec
// §4.3). Writes already in range do not grow the tree.
func (t *Tree) SetCell(p coord.World, state uint8) {
	t.GrowToCover(coord.Rect{Low: p, High: p})
	t.root = setCellLocal(t.arena, t.root, t.localOf(p), state)
}

func setCellLocal(a *arena.Arena, n *arena.Node, local coord.Local, state uint8) *arena.Node {
	if n.Layer() == 0 {
		return a.InternLeaf(state)
	}
	idx := coord.CornerBits(local, n.NDim(), n.Layer())
	childLocal := local.Sub(coord.ChildOffset(idx, n.NDim(), n.Layer()))
	newChild := setCellLocal(a, n.Child(idx), childLocal, state)
	if newChild == n.Child(idx) {
		return n
	}
	children := append([]*arena.Node(nil), n.Children()...)
	children[idx] = newChild
	return a.InternBranch(n.Layer(), children)
}

// Grow doubles the tree's footprint by wrapping the current root as
// child `corner` of a new, one-layer-taller empty parent, re-centering
// the offset so the old root's content keeps its world position (spec
// §4.3 "wrapping the current root as the appropriate corner of a new
// empty layer-L+1 parent"; the re-centering arithmetic generalizes
// original_source/src/automaton/space/grid.rs). Growth is free when the
// new siblings are the canonical empty node repeated.
func (t *Tree) Grow(corner uint) {
	newLayer := t.root.Layer() + 1
	oldSide := t.root.Side()
	emptyChild := t.arena.Empty(t.root.Layer())

	children := t.arena.ScratchChildren()
	defer t.arena.PutScratchChildren(children)
	for i := range children {
		children[i] = emptyChild
	}
	children[corner] = t.root

	t.root = t.arena.InternBranch(newLayer, children)

	cornerOff := coord.ChildOffset(corner, t.ndim, newLayer)
	newOffset := coord.NewWorld(t.ndim)
	for i := 0; i < t.ndim; i++ {
		shift := int64(0)
		if cornerOff[i] != 0 {
			shift = oldSide.Int64()
		}
		newOffset.V[i].Sub(t.offset.V[i], big.NewInt(shift))
	}
	t.offset = newOffset
}

// allOnesCorner and zeroCorner are the two extreme corners of an ndim
// hypercube: high on every axis, and low on every axis.
func allOnesCorner(ndim int) uint { return uint(1<<uint(ndim)) - 1 }

// growTowardCorner picks, for each axis, the corner bit that extends the
// footprint in the direction r actually needs: bit 1 (old root placed on
// the high side) extends the low bound downward; bit 0 extends the high
// bound upward. Axes already satisfied get bit 1.
func (t *Tree) growTowardCorner(r coord.Rect) uint {
	var corner uint
	high := t.footprintHigh()
	for i := 0; i < t.ndim; i++ {
		switch {
		case r.Low.V[i].Cmp(t.offset.V[i]) < 0:
			corner |= 1 << uint(i)
		case r.High.V[i].Cmp(high.V[i]) >= 0:
			// bit stays 0 for this axis
		default:
			corner |= 1 << uint(i) // arbitrary but consistent default
		}
	}
	return corner
}

// GrowToCover repeatedly grows the tree until r lies entirely within the
// root's footprint, returning the number of growth steps performed. Each
// step picks, per axis, whichever corner placement is needed to make
// progress toward covering r; a handful of iterations always converges
// because each step at least doubles the side length while the target
// span is fixed.
func (t *Tree) GrowToCover(r coord.Rect) int {
	steps := 0
	for !t.inBounds(r.Low) || !t.inBounds(r.High) {
		t.Grow(t.growTowardCorner(r))
		steps++
	}
	return steps
}

// PadSymmetric enlarges the tree by two layers, used by the step engine
// to add empty margin around the pattern footprint (spec §4.5 step 2). It
// grows twice, using opposite corners, which leaves at least one
// old-root's-worth of empty margin on every axis in both directions (one
// old side below the old footprint, two above it); spec.md calls for
// "one more layer" of headroom, and a
// two-layer symmetric pad is the simplest N-dimensional generalization
// that actually delivers margin on both sides of every axis rather than
// just one (SPEC_FULL.md Open Question resolution, see DESIGN.md).
func (t *Tree) PadSymmetric() {
	t.Grow(allOnesCorner(t.ndim))
	t.Grow(0)
}

// Shrink replaces the root by its unique nonempty child when exactly one
// of the 2^NDim quadrants is nonempty, whichever corner that is,
// repeating until no further shrink applies or the minimum layer (1) is
// reached (spec §4.3). A fully empty root collapses to the canonical
// empty layer-1 root.
func (t *Tree) Shrink() {
	for t.root.Layer() > 1 {
		children := t.root.Children()
		nonEmptyIdx := -1
		for i, c := range children {
			if !c.IsEmpty() {
				if nonEmptyIdx != -1 {
					return // more than one nonempty quadrant: already minimal
				}
				nonEmptyIdx = i
			}
		}
		if nonEmptyIdx == -1 {
			// fully empty: collapse straight to the canonical empty root
			// at the minimum layer.
			t.root = t.arena.Empty(1)
			t.recenterOffsetForEmptyRoot()
			return
		}

		newChild := children[nonEmptyIdx]
		childOff := coord.ChildOffset(uint(nonEmptyIdx), t.ndim, t.root.Layer())

		newOffset := coord.NewWorld(t.ndim)
		for i := 0; i < t.ndim; i++ {
			newOffset.V[i].Add(t.offset.V[i], big.NewInt(childOff[i]))
		}
		t.root = newChild
		t.offset = newOffset
	}
}

func (t *Tree) recenterOffsetForEmptyRoot() {
	off := coord.NewWorld(t.ndim)
	for i := 0; i < t.ndim; i++ {
		off.V[i].SetInt64(-1)
	}
	t.offset = off
}
