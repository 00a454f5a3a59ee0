// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package hashlife implements the memoized forward-simulation step engine
// (spec §4.5): the recursive-doubling core that advances an ND-tree by a
// power-of-two number of generations per node, sharing work across every
// canonically-identical sub-region of the universe.
//
// Engine.Result is grounded on the classic HashLife recursion (as
// generalized to N axes by SPEC_FULL.md's supplemented description of
// original_source's space-partitioning), and reuses the arena's
// epoch-tagged, weakly-referenced per-node result slot (spec §4.2, §4.5)
// rather than a separate cache structure.
package hashlife

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gaissmai/ndcell/internal/arena"
	"github.com/gaissmai/ndcell/internal/coord"
	"github.com/gaissmai/ndcell/internal/rule"
)

// Engine evaluates one Rule's memoized forward transition over nodes of
// a single Arena. It holds no per-step state; a value is safe to reuse
// (and to share across goroutines) across many Advance calls, including
// concurrently, as long as the rule does not change underneath it -- a
// rule change must go through a new Engine plus Arena.BumpEpoch (spec
// §4.5, §4.6 set_rule).
type Engine struct {
	a    *arena.Arena
	ndim int
	rule rule.Rule
	base int
}

// New constructs an Engine for r over a's canonical nodes. It returns
// rule.ErrInvalidRule if r's declared parameters are inconsistent, and a
// plain error if r's dimension does not match the arena's.
func New(a *arena.Arena, r rule.Rule) (*Engine, error) {
	if err := rule.Validate(r); err != nil {
		return nil, err
	}
	if r.NDim() != a.NDim() {
		return nil, fmt.Errorf("hashlife: rule dimension %d does not match arena dimension %d", r.NDim(), a.NDim())
	}
	return &Engine{a: a, ndim: a.NDim(), rule: r, base: baseLayer(r.Radius())}, nil
}

// Rule returns the engine's transition function.
func (e *Engine) Rule() rule.Rule { return e.rule }

// BaseLayer returns the smallest node layer the engine computes a
// transition for directly rather than by recursive composition.
func (e *Engine) BaseLayer() int { return e.base }

// baseLayer picks the smallest branch layer whose node is wide enough to
// supply a full neighborhood for every cell of its centered half-size
// sub-block (spec §4.5). The common Moore/Life case (radius <= 1) uses
// the classic four-cell-wide base directly; it is the exact boundary
// case of the general formula (2^2 >= 2*(2*1+1) would demand layer 3, but
// layer 2 already satisfies the real margin requirement radius <=
// 2^(layer-2) with no slack to spare). Larger radii use the general
// formula spec §4.5 gives verbatim.
func baseLayer(radius int) int {
	if radius <= 1 {
		return 2
	}
	need := 2 * (2*radius + 1)
	layer := 0
	for (1 << uint(layer)) < need {
		layer++
	}
	return layer
}

// Result returns x's canonical time-advanced center: a node one layer
// below x holding x's centered half-size sub-block advanced 2^(x.Layer()
// - BaseLayer()) generations, computed once per distinct canonical node
// and cached against the arena's current rule epoch (spec §4.5). ctx is
// checked between independent sub-results so a cancellation lands within
// a bounded number of recursive steps rather than only between top-level
// Advance calls.
func (e *Engine) Result(ctx context.Context, x *arena.Node) (*arena.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}

	epoch := e.a.Epoch()
	if cached, ok := x.GetResult(epoch); ok {
		return cached, nil
	}

	var (
		res *arena.Node
		err error
	)
	switch {
	case x.Layer() == e.base:
		res, err = e.computeBase(x)
	case x.Layer() > e.base:
		res, err = e.computeRecursive(ctx, x)
	default:
		return nil, fmt.Errorf("hashlife: node at layer %d is below the engine's base layer %d", x.Layer(), e.base)
	}
	if err != nil {
		return nil, err
	}

	x.SetResult(epoch, res)
	return res, nil
}

// computeRecursive implements the two-pass recursive-doubling step (spec
// §4.5): x's 3^ndim overlapping half-size sub-nodes are each advanced by
// composeSubnode+Result, recombined into 2^ndim half-size
// intermediate nodes, and those are advanced by Result a second time,
// doubling the total generations advanced relative to a single pass.
func (e *Engine) computeRecursive(ctx context.Context, x *arena.Node) (*arena.Node, error) {
	layer := x.Layer()

	var idxs []idxVec
	eachTernary(e.ndim, func(idx idxVec) { idxs = append(idxs, idx) })

	pass1 := make([]*arena.Node, len(idxs))
	group, gctx := errgroup.WithContext(ctx)
	for _, idx := range idxs {
		idx := idx
		group.Go(func() error {
			sub := composeSubnode(e.a, x, e.ndim, idx)
			res, err := e.Result(gctx, sub)
			if err != nil {
				return err
			}
			pass1[ternaryIndex(idx, e.ndim)] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	pass1Get := func(g idxVec) *arena.Node { return pass1[ternaryIndex(g, e.ndim)] }

	n := 1 << uint(e.ndim)
	pass2 := make([]*arena.Node, n)
	group, gctx = errgroup.WithContext(ctx)
	for p := uint(0); p < uint(n); p++ {
		p := p
		group.Go(func() error {
			var base idxVec
			for axis := 0; axis < e.ndim; axis++ {
				base[axis] = int((p >> uint(axis)) & 1)
			}
			mid := combineChildren(e.a, e.ndim, layer-1, func(c uint) *arena.Node {
				var g idxVec
				for axis := 0; axis < e.ndim; axis++ {
					g[axis] = base[axis] + int((c>>uint(axis))&1)
				}
				return pass1Get(g)
			})
			res, err := e.Result(gctx, mid)
			if err != nil {
				return err
			}
			pass2[p] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return e.a.InternBranch(layer-1, pass2), nil
}

// computeBase handles a node at the engine's base layer by directly
// applying the rule once to every cell of the centered half-size
// sub-block, reading each cell's full neighborhood straight out of x
// (spec §4.5 "extracts the ... neighborhood, applies the rule").
func (e *Engine) computeBase(x *arena.Node) (*arena.Node, error) {
	quarter := int64(1) << uint(e.base-2)
	origin := coord.Local{}
	for i := 0; i < e.ndim; i++ {
		origin[i] = quarter
	}
	return e.buildBaseResult(x, origin, e.base-1)
}

// buildBaseResult recursively assembles the layer-sized node rooted at
// origin (in x's local coordinates) by transitioning individual cells at
// layer 0 and composing branches on the way back up.
func (e *Engine) buildBaseResult(x *arena.Node, origin coord.Local, layer int) (*arena.Node, error) {
	if layer == 0 {
		state, err := e.transitionAt(x, origin)
		if err != nil {
			return nil, err
		}
		return e.a.InternLeaf(state), nil
	}
	children := e.a.ScratchChildren()
	defer e.a.PutScratchChildren(children)
	for i := range children {
		childOrigin := origin.Add(coord.ChildOffset(uint(i), e.ndim, layer))
		child, err := e.buildBaseResult(x, childOrigin, layer-1)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return e.a.InternBranch(layer, children), nil
}

// transitionAt reads the rule's full neighborhood around center (in x's
// local coordinates) and applies Transition once, translating an
// out-of-range result or a recovered panic into the matching sentinel
// (spec §7 RuleOutputOutOfRange, RuleFailure).
func (e *Engine) transitionAt(x *arena.Node, center coord.Local) (state uint8, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRuleFailure, r)
		}
	}()

	radius := e.rule.Radius()
	nb := rule.NewNeighborhood(e.ndim, radius)
	offset := make([]int, e.ndim)
	var fill func(axis int)
	fill = func(axis int) {
		if axis == e.ndim {
			var local coord.Local
			for i := 0; i < e.ndim; i++ {
				local[i] = center[i] + int64(offset[i])
			}
			nb.Set(append([]int(nil), offset...), readLocal(x, e.ndim, local))
			return
		}
		for v := -radius; v <= radius; v++ {
			offset[axis] = v
			fill(axis + 1)
		}
	}
	fill(0)

	state = e.rule.Transition(nb)
	if int(state) >= e.rule.StateCount() {
		return 0, ErrRuleOutputOutOfRange
	}
	return state, nil
}

// readLocal reads the cell state at local (relative to n's own low
// corner) by descending n's children, mirroring tree.getCellLocal but
// operating on a detached node with no tree offset.
func readLocal(n *arena.Node, ndim int, local coord.Local) uint8 {
	for n.Layer() > 0 {
		idx := coord.CornerBits(local, ndim, n.Layer())
		local = local.Sub(coord.ChildOffset(idx, ndim, n.Layer()))
		n = n.Child(idx)
	}
	return n.State()
}
