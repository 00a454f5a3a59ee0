// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package coord

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLocalArithmetic(t *testing.T) {
	c := qt.New(t)

	a := NewLocal(1, 2, 3)
	b := NewLocal(4, -1, 0)

	c.Assert(a.Add(b), qt.Equals, NewLocal(5, 1, 3))
	c.Assert(a.Sub(b), qt.Equals, NewLocal(-3, 3, 3))
	c.Assert(a.Min(b), qt.Equals, NewLocal(1, -1, 0))
	c.Assert(a.Max(b), qt.Equals, NewLocal(4, 2, 3))
}

func TestCornerBitsRoundTrip(t *testing.T) {
	c := qt.New(t)

	const ndim = 3
	const layer = 4 // side 16, half 8
	for idx := uint(0); idx < 1<<ndim; idx++ {
		off := ChildOffset(idx, ndim, layer)
		// a point strictly inside the child's footprint
		pos := off.Add(NewLocal(1, 1, 1))
		got := CornerBits(pos, ndim, layer)
		c.Assert(got, qt.Equals, idx)
	}
}

func TestNumChildren(t *testing.T) {
	c := qt.New(t)
	c.Assert(NumChildren(1), qt.Equals, 2)
	c.Assert(NumChildren(2), qt.Equals, 4)
	c.Assert(NumChildren(6), qt.Equals, 64)
}

func TestWorldArithmetic(t *testing.T) {
	c := qt.New(t)

	a := WorldFromInt64(2, 3, -5)
	b := WorldFromInt64(2, -1, 10)

	c.Assert(a.Add(b).Equal(WorldFromInt64(2, 2, 5)), qt.IsTrue)
	c.Assert(a.Sub(b).Equal(WorldFromInt64(2, 4, -15)), qt.IsTrue)

	clone := a.Clone()
	clone.V[0].SetInt64(100)
	c.Assert(a.Equal(WorldFromInt64(2, 3, -5)), qt.IsTrue, qt.Commentf("Clone must not alias"))
}

func TestRectContainsAndIntersects(t *testing.T) {
	c := qt.New(t)

	r := NewRect(WorldFromInt64(2, 0, 0), WorldFromInt64(2, 10, 10))
	c.Assert(r.Contains(WorldFromInt64(2, 5, 5)), qt.IsTrue)
	c.Assert(r.Contains(WorldFromInt64(2, -1, 5)), qt.IsFalse)
	c.Assert(r.Contains(WorldFromInt64(2, 10, 10)), qt.IsTrue)

	other := NewRect(WorldFromInt64(2, 10, 10), WorldFromInt64(2, 20, 20))
	c.Assert(r.Intersects(other), qt.IsTrue) // touching corner counts

	disjoint := NewRect(WorldFromInt64(2, 11, 11), WorldFromInt64(2, 20, 20))
	c.Assert(r.Intersects(disjoint), qt.IsFalse)
}

func TestRectNormalizes(t *testing.T) {
	c := qt.New(t)
	r := NewRect(WorldFromInt64(1, 10), WorldFromInt64(1, -10))
	c.Assert(r.Low.Equal(WorldFromInt64(1, -10)), qt.IsTrue)
	c.Assert(r.High.Equal(WorldFromInt64(1, 10)), qt.IsTrue)
}
