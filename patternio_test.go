// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestEnumerateYieldsOnlyLiveCellsInRect(t *testing.T) {
	c := qt.New(t)
	au := newLifeAutomaton(c)
	setLive(au, [][2]int64{{0, 0}, {1, 0}, {50, 50}})

	r := NewRect(WorldFromInt64(2, -5, -5), WorldFromInt64(2, 5, 5))
	got := map[[2]int64]bool{}
	for pos, state := range au.Enumerate(r) {
		if state != 0 {
			got[[2]int64{pos.V[0].Int64(), pos.V[1].Int64()}] = true
		}
	}
	c.Assert(got, qt.DeepEquals, map[[2]int64]bool{{0, 0}: true, {1, 0}: true})
}

func TestExportImportSnapshotRoundTrips(t *testing.T) {
	c := qt.New(t)
	src := newLifeAutomaton(c)
	setLive(src, [][2]int64{{0, 0}, {1, 0}, {2, 1}})

	snapshot := src.ExportSnapshot()

	dst := newLifeAutomaton(c)
	err := dst.ImportSnapshot(snapshot)
	c.Assert(err, qt.IsNil)

	c.Assert(liveSet(dst), qt.DeepEquals, liveSet(src))
	c.Assert(dst.Population().Cmp(src.Population()), qt.Equals, 0)
}

func TestPasteStreamOrNonzeroPreservesUntouchedCells(t *testing.T) {
	c := qt.New(t)
	au := newLifeAutomaton(c)
	au.SetCell(WorldFromInt64(2, 0, 0), 1)

	seq := func(yield func(World, uint8) bool) {
		if !yield(WorldFromInt64(2, 1, 0), 1) {
			return
		}
	}
	err := au.PasteStream(seq, OrNonzero)
	c.Assert(err, qt.IsNil)

	c.Assert(au.GetCell(WorldFromInt64(2, 0, 0)), qt.Equals, uint8(1))
	c.Assert(au.GetCell(WorldFromInt64(2, 1, 0)), qt.Equals, uint8(1))
}
