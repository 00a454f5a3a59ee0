// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tree

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/gaissmai/ndcell/internal/arena"
	"github.com/gaissmai/ndcell/internal/coord"
)

func TestSetGetCellRoundTrip(t *testing.T) {
	c := qt.New(t)
	a := arena.New(2, arena.Options{})
	tr := New(a, 2)

	p := coord.WorldFromInt64(2, 5, -3)
	tr.SetCell(p, 7)
	c.Assert(tr.GetCell(p), qt.Equals, uint8(7))

	tr.SetCell(p, 0)
	c.Assert(tr.GetCell(p), qt.Equals, uint8(0))
}

func TestGetCellOutsideFootprintIsZero(t *testing.T) {
	c := qt.New(t)
	a := arena.New(2, arena.Options{})
	tr := New(a, 2)

	far := coord.WorldFromInt64(2, 1_000_000, -1_000_000)
	c.Assert(tr.GetCell(far), qt.Equals, uint8(0))
}

func TestSetCellGrowsAndPreservesExistingCells(t *testing.T) {
	c := qt.New(t)
	a := arena.New(2, arena.Options{})
	tr := New(a, 2)

	near := coord.WorldFromInt64(2, 0, 0)
	tr.SetCell(near, 3)

	far := coord.WorldFromInt64(2, 1000, -1000)
	tr.SetCell(far, 9)

	c.Assert(tr.GetCell(near), qt.Equals, uint8(3))
	c.Assert(tr.GetCell(far), qt.Equals, uint8(9))
}

func TestSetCellNegativeCoordinates(t *testing.T) {
	c := qt.New(t)
	a := arena.New(1, arena.Options{})
	tr := New(a, 1)

	for _, x := range []int64{-5, -1, 0, 1, 5} {
		p := coord.WorldFromInt64(1, x)
		tr.SetCell(p, uint8(x+10))
	}
	for _, x := range []int64{-5, -1, 0, 1, 5} {
		p := coord.WorldFromInt64(1, x)
		c.Assert(tr.GetCell(p), qt.Equals, uint8(x+10))
	}
}

func TestShrinkRestoresMinimalRoot(t *testing.T) {
	c := qt.New(t)
	a := arena.New(2, arena.Options{})
	tr := New(a, 2)

	p := coord.WorldFromInt64(2, 100, 100)
	tr.SetCell(p, 1)
	grownLayer := tr.Root().Layer()
	c.Assert(grownLayer > 1, qt.IsTrue)

	tr.SetCell(p, 0)
	tr.Shrink()
	c.Assert(tr.Root().IsEmpty(), qt.IsTrue)
	c.Assert(tr.Root().Layer(), qt.Equals, 1)
}

func TestCloneSharesRootButIsIndependent(t *testing.T) {
	c := qt.New(t)
	a := arena.New(2, arena.Options{})
	tr := New(a, 2)
	tr.SetCell(coord.WorldFromInt64(2, 1, 1), 5)

	clone := tr.Clone()
	c.Assert(clone.Root(), qt.Equals, tr.Root())

	clone.SetCell(coord.WorldFromInt64(2, 1, 1), 9)
	c.Assert(tr.GetCell(coord.WorldFromInt64(2, 1, 1)), qt.Equals, uint8(5))
	c.Assert(clone.GetCell(coord.WorldFromInt64(2, 1, 1)), qt.Equals, uint8(9))
}

func TestIdenticalContentSharesRootIdentity(t *testing.T) {
	c := qt.New(t)
	a := arena.New(2, arena.Options{})

	t1 := New(a, 2)
	t1.SetCell(coord.WorldFromInt64(2, 0, 0), 1)
	t1.SetCell(coord.WorldFromInt64(2, 1, 0), 1)

	t2 := New(a, 2)
	t2.SetCell(coord.WorldFromInt64(2, 1, 0), 1)
	t2.SetCell(coord.WorldFromInt64(2, 0, 0), 1)

	c.Assert(t1.Root(), qt.Equals, t2.Root())
}

func TestPopulationMatchesSetCells(t *testing.T) {
	c := qt.New(t)
	a := arena.New(3, arena.Options{})
	tr := New(a, 3)

	pts := [][3]int64{{0, 0, 0}, {1, 0, 0}, {-5, 5, -5}}
	for _, p := range pts {
		tr.SetCell(coord.WorldFromInt64(3, p[0], p[1], p[2]), 1)
	}
	c.Assert(tr.Population().Int64(), qt.Equals, int64(len(pts)))
}
