// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hashlife

import "github.com/gaissmai/ndcell/internal/arena"

// maxDim mirrors coord.MaxDim; duplicated here to avoid a dependency on
// the coord package for what is purely small fixed-size index arithmetic.
const maxDim = 6

// idxVec is a per-axis index, used both for {0,1,2}^ndim grid positions
// (the 3^ndim overlapping sub-nodes) and {0,1}^ndim child/grandchild
// selectors.
type idxVec [maxDim]int

// eachTernary calls fn once for every point of {0,1,2}^ndim, the
// overlapping grid HashLife composes a branch node's 3^ndim half-sized
// sub-nodes from (spec §4.5 "3^N overlapping grid").
func eachTernary(ndim int, fn func(idxVec)) {
	var idx idxVec
	var rec func(axis int)
	rec = func(axis int) {
		if axis == ndim {
			fn(idx)
			return
		}
		for v := 0; v < 3; v++ {
			idx[axis] = v
			rec(axis + 1)
		}
	}
	rec(0)
}

// combineChildren builds the canonical branch at branchLayer whose
// 1<<ndim children are supplied by pick, indexed the same way
// arena.Node.Child is (bit i of the child index selects axis i's high
// half).
func combineChildren(a *arena.Arena, ndim, branchLayer int, pick func(child uint) *arena.Node) *arena.Node {
	n := 1 << uint(ndim)
	children := a.ScratchChildren()
	defer a.PutScratchChildren(children)
	for c := uint(0); c < uint(n); c++ {
		children[c] = pick(c)
	}
	return a.InternBranch(branchLayer, children)
}

// grandchild returns x's grandchild at grid position g, where g[axis] in
// {0,1,2,3} addresses x's four-wide grandchild grid along that axis (x's
// own children split axis i into {0,1}; each child's children split it
// again, giving four grandchild slots per axis in total).
func grandchild(x *arena.Node, ndim int, g idxVec) *arena.Node {
	var childIdx, gcIdx uint
	for axis := 0; axis < ndim; axis++ {
		c, m := g[axis]/2, g[axis]%2
		if c == 1 {
			childIdx |= 1 << uint(axis)
		}
		if m == 1 {
			gcIdx |= 1 << uint(axis)
		}
	}
	return x.Child(childIdx).Child(gcIdx)
}

// composeSubnode builds one of x's 3^ndim overlapping half-sized
// sub-nodes (spec §4.5): the sub-node at ternary grid position idx, one
// layer below x, assembled from the appropriate four-wide window of x's
// grandchildren. idx components range over {0,1,2}; idx of all 1s is the
// sub-node exactly centered within x.
func composeSubnode(a *arena.Arena, x *arena.Node, ndim int, idx idxVec) *arena.Node {
	layer := x.Layer() - 1
	return combineChildren(a, ndim, layer, func(c uint) *arena.Node {
		var g idxVec
		for axis := 0; axis < ndim; axis++ {
			g[axis] = idx[axis] + int((c>>uint(axis))&1)
		}
		return grandchild(x, ndim, g)
	})
}

// ternaryIndex flattens a {0,1,2}^ndim grid position into a dense slice
// index, used to store per-position results computed concurrently
// without a map's synchronization overhead.
func ternaryIndex(idx idxVec, ndim int) int {
	n, mul := 0, 1
	for i := 0; i < ndim; i++ {
		n += idx[i] * mul
		mul *= 3
	}
	return n
}

// centeredIdx is the ternary grid position exactly in the middle of a
// node on every axis.
func centeredIdx(ndim int) idxVec {
	var idx idxVec
	for i := 0; i < ndim; i++ {
		idx[i] = 1
	}
	return idx
}
