// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hashlife

import (
	"context"
	"math/big"

	"github.com/gaissmai/ndcell/internal/coord"
	"github.com/gaissmai/ndcell/internal/tree"
)

// Advance steps t forward by exactly n generations (n >= 0), replacing
// t's root and offset with the new universe state only once every
// generation has committed (spec §4.5, §4.6 step). Generations are
// applied as a sum of power-of-two chunks, one chunk per set bit of n
// from the most significant down; each chunk is realized by a single
// recursive-doubling composition rooted deep enough in a padded tree to
// guarantee no information from outside the padded footprint could reach
// the chunk's result.
//
// All chunks are applied to a private clone of t first (Tree.Clone is
// cheap: it shares the root node and copies only the offset). t itself
// is updated in a single final step, so a failure partway through a
// multi-chunk request -- a rule error or a cancelled context -- leaves t
// exactly as it was before Advance was called (spec §4.5 "leaves the
// automaton unchanged at the generation it had before advance was
// called"), never holding a partially-applied chunk.
func (e *Engine) Advance(ctx context.Context, t *tree.Tree, n *big.Int) error {
	if n.Sign() < 0 {
		return ErrUnsupportedStepDirection
	}
	if n.Sign() == 0 {
		return nil
	}

	work := t.Clone()

	remaining := new(big.Int).Set(n)
	for remaining.Sign() > 0 {
		if err := ctx.Err(); err != nil {
			return ErrCancelled
		}

		k := remaining.BitLen() - 1
		chunk := new(big.Int).Lsh(big.NewInt(1), uint(k))

		if err := e.advanceChunk(ctx, work, k); err != nil {
			return err
		}

		remaining.Sub(remaining, chunk)
	}

	t.ReplaceRoot(work.Root(), work.Offset())
	return nil
}

// advanceChunk advances t by exactly 2^k generations in one recursive
// composition. Result(x) advances x by exactly 2^(x.Layer()-BaseLayer())
// generations, so the node actually fed to Result must sit at layer
// BaseLayer()+k; per spec §4.5 the root is first padded to at least that
// layer, then padded one layer further for safety margin before the
// centered sub-node at the target layer is extracted and resolved.
func (e *Engine) advanceChunk(ctx context.Context, t *tree.Tree, k int) error {
	target := e.base + k
	safety := target + 1 // spec §4.5 step 2: "enlarge it by one more layer"

	for t.Root().Layer() < safety {
		t.PadSymmetric()
	}

	centered := t.Root()
	for centered.Layer() > target {
		centered = composeSubnode(e.a, centered, e.ndim, centeredIdx(e.ndim))
	}

	result, err := e.Result(ctx, centered)
	if err != nil {
		return err
	}

	newOffset := recenter(t.Offset(), t.Root().Side(), result.Side(), e.ndim)
	t.ReplaceRoot(result, newOffset)
	return nil
}

// recenter computes the world offset of a node of newSide centered
// within a footprint of oldSide that starts at oldOffset.
func recenter(oldOffset coord.World, oldSide, newSide *big.Int, ndim int) coord.World {
	half := new(big.Int).Sub(oldSide, newSide)
	half.Rsh(half, 1)

	out := coord.NewWorld(ndim)
	for i := 0; i < ndim; i++ {
		out.V[i].Add(oldOffset.V[i], half)
	}
	return out
}
