// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import (
	"iter"
	"math/big"

	"github.com/gaissmai/ndcell/internal/coord"
)

// ProjectionParams describes how a P-dimensional view maps onto a
// D-dimensional automaton (spec §4.7): Axes[vi] names the storage axis
// that view axis vi reads/writes, Flip[vi] negates that view axis's
// sense, and Pin supplies the fixed storage coordinate used for every
// axis not named in Axes (and ignored for axes that are).
type ProjectionParams struct {
	Axes []int
	Flip []bool
	Pin  World
}

// viewDim returns len(Axes), the view's own dimension P.
func (p ProjectionParams) viewDim() int { return len(p.Axes) }

// validate checks ProjectionParams against a D-dimensional automaton
// (spec §4.7: "exactly P of the D axes are chosen, the slice pins the
// others").
func (p ProjectionParams) validate(storageDim int) error {
	viewDim := p.viewDim()
	if viewDim < 1 || viewDim > storageDim {
		return ErrProjectionShapeMismatch
	}
	if p.Flip != nil && len(p.Flip) != viewDim {
		return ErrProjectionShapeMismatch
	}
	if p.Pin.NDim != storageDim {
		return ErrProjectionShapeMismatch
	}
	seen := make([]bool, storageDim)
	for _, axis := range p.Axes {
		if axis < 0 || axis >= storageDim || seen[axis] {
			return ErrProjectionShapeMismatch
		}
		seen[axis] = true
	}
	return nil
}

func (p ProjectionParams) flip(vi int) bool {
	if p.Flip == nil {
		return false
	}
	return p.Flip[vi]
}

// Projection is a P-dimensional read/write adapter over a D-dimensional
// Automaton (spec §4.7). It holds no cell data of its own; every
// operation reads or writes straight through to the bound Automaton's
// tree.
type Projection struct {
	au     *Automaton
	params ProjectionParams
}

// NewProjection binds params to au, validating that params' shape
// matches au's dimension (spec §4.7).
func NewProjection(au *Automaton, params ProjectionParams) (*Projection, error) {
	if err := params.validate(au.NDim()); err != nil {
		return nil, err
	}
	return &Projection{au: au, params: clonedParams(params)}, nil
}

func clonedParams(p ProjectionParams) ProjectionParams {
	axes := append([]int(nil), p.Axes...)
	var flip []bool
	if p.Flip != nil {
		flip = append([]bool(nil), p.Flip...)
	}
	return ProjectionParams{Axes: axes, Flip: flip, Pin: p.Pin.Clone()}
}

// GetParams returns the projection's current parameters.
func (pr *Projection) GetParams() ProjectionParams { return clonedParams(pr.params) }

// SetParams replaces the projection's parameters, validating the new
// shape against the bound automaton (spec §4.7).
func (pr *Projection) SetParams(params ProjectionParams) error {
	if err := params.validate(pr.au.NDim()); err != nil {
		return err
	}
	pr.params = clonedParams(params)
	return nil
}

// UnprojectPos embeds a P-dimensional view position into the bound
// automaton's D-dimensional storage coordinates, filling every axis not
// named by Axes from Pin (spec §4.7 unproject_pos).
func (pr *Projection) UnprojectPos(viewPos World) World {
	out := pr.params.Pin.Clone()
	for vi, axis := range pr.params.Axes {
		v := viewPos.V[vi]
		if pr.params.flip(vi) {
			v = new(big.Int).Neg(v)
		}
		out.V[axis].Set(v)
	}
	return out
}

// projectPoint maps a D-dimensional storage position already known to
// lie on the pinned hyperplane down to its P-dimensional view position.
func (pr *Projection) projectPoint(storagePos World) World {
	out := coord.NewWorld(pr.params.viewDim())
	for vi, axis := range pr.params.Axes {
		v := storagePos.V[axis]
		if pr.params.flip(vi) {
			v = new(big.Int).Neg(v)
		}
		out.V[vi].Set(v)
	}
	return out
}

// onPinnedPlane reports whether storagePos agrees with Pin on every axis
// not named by Axes.
func (pr *Projection) onPinnedPlane(storagePos World) bool {
	axisInView := make([]bool, pr.au.NDim())
	for _, axis := range pr.params.Axes {
		axisInView[axis] = true
	}
	for axis := 0; axis < pr.au.NDim(); axis++ {
		if axisInView[axis] {
			continue
		}
		if storagePos.V[axis].Cmp(pr.params.Pin.V[axis]) != 0 {
			return false
		}
	}
	return true
}

// ProjectRead yields every non-default (position, state) pair visible
// through the projection: the automaton's live cells restricted to the
// current pinned hyperplane, reindexed into view coordinates (spec §4.7
// project_read).
func (pr *Projection) ProjectRead() iter.Seq2[World, uint8] {
	return func(yield func(World, uint8) bool) {
		box := pr.au.BoundingBox()
		for pos, state := range pr.au.tree.Enumerate(box) {
			if !pr.onPinnedPlane(pos) {
				continue
			}
			if !yield(pr.projectPoint(pos), state) {
				return
			}
		}
	}
}

// SetCell writes state at the view position viewPos, translating it to
// storage coordinates via UnprojectPos before delegating to the bound
// Automaton (spec §4.7's read/write contract; write-through-pinned-axes
// semantics follow directly from UnprojectPos filling unnamed axes from
// the current Pin).
func (pr *Projection) SetCell(viewPos World, state uint8) error {
	return pr.au.SetCell(pr.UnprojectPos(viewPos), state)
}

// GetCell reads the state at the view position viewPos.
func (pr *Projection) GetCell(viewPos World) uint8 {
	return pr.au.GetCell(pr.UnprojectPos(viewPos))
}
