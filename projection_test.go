// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestProjectionReadsPinnedSlice(t *testing.T) {
	c := qt.New(t)
	au, err := NewAutomaton(3, IdentityRule{Dim: 3, States: 2, Rad: 1}, Options{})
	c.Assert(err, qt.IsNil)

	au.SetCell(WorldFromInt64(3, 1, 2, 0), 1)
	au.SetCell(WorldFromInt64(3, 1, 2, 5), 1) // off the z=0 plane

	pr, err := NewProjection(au, ProjectionParams{
		Axes: []int{0, 1},
		Pin:  WorldFromInt64(3, 0, 0, 0),
	})
	c.Assert(err, qt.IsNil)

	got := map[[2]int64]bool{}
	for pos, state := range pr.ProjectRead() {
		if state != 0 {
			got[[2]int64{pos.V[0].Int64(), pos.V[1].Int64()}] = true
		}
	}
	c.Assert(got, qt.DeepEquals, map[[2]int64]bool{{1, 2}: true})
}

func TestProjectionUnprojectPosFillsPinnedAxes(t *testing.T) {
	c := qt.New(t)
	au, err := NewAutomaton(3, IdentityRule{Dim: 3, States: 2, Rad: 1}, Options{})
	c.Assert(err, qt.IsNil)

	pr, err := NewProjection(au, ProjectionParams{
		Axes: []int{0, 2},
		Pin:  WorldFromInt64(3, 0, 7, 0),
	})
	c.Assert(err, qt.IsNil)

	got := pr.UnprojectPos(WorldFromInt64(2, 3, 4))
	c.Assert(got.Equal(WorldFromInt64(3, 3, 7, 4)), qt.IsTrue)
}

func TestProjectionSetCellWritesThroughPin(t *testing.T) {
	c := qt.New(t)
	au, err := NewAutomaton(3, IdentityRule{Dim: 3, States: 2, Rad: 1}, Options{})
	c.Assert(err, qt.IsNil)

	pr, err := NewProjection(au, ProjectionParams{
		Axes: []int{0, 1},
		Pin:  WorldFromInt64(3, 0, 0, 9),
	})
	c.Assert(err, qt.IsNil)

	err = pr.SetCell(WorldFromInt64(2, 2, 2), 1)
	c.Assert(err, qt.IsNil)
	c.Assert(au.GetCell(WorldFromInt64(3, 2, 2, 9)), qt.Equals, uint8(1))
	c.Assert(pr.GetCell(WorldFromInt64(2, 2, 2)), qt.Equals, uint8(1))
}

func TestProjectionRejectsShapeMismatch(t *testing.T) {
	c := qt.New(t)
	au, err := NewAutomaton(3, IdentityRule{Dim: 3, States: 2, Rad: 1}, Options{})
	c.Assert(err, qt.IsNil)

	_, err = NewProjection(au, ProjectionParams{
		Axes: []int{0, 1, 2, 2}, // too many / duplicate axes
		Pin:  WorldFromInt64(3, 0, 0, 0),
	})
	c.Assert(err, qt.ErrorIs, ErrProjectionShapeMismatch)

	_, err = NewProjection(au, ProjectionParams{
		Axes: []int{0, 5}, // axis 5 does not exist in a 3-dim automaton
		Pin:  WorldFromInt64(3, 0, 0, 0),
	})
	c.Assert(err, qt.ErrorIs, ErrProjectionShapeMismatch)
}

func TestProjectionSetParamsRevalidates(t *testing.T) {
	c := qt.New(t)
	au, err := NewAutomaton(2, IdentityRule{Dim: 2, States: 2, Rad: 1}, Options{})
	c.Assert(err, qt.IsNil)

	pr, err := NewProjection(au, ProjectionParams{
		Axes: []int{0},
		Pin:  WorldFromInt64(2, 0, 0),
	})
	c.Assert(err, qt.IsNil)

	err = pr.SetParams(ProjectionParams{Axes: []int{0, 1}, Pin: WorldFromInt64(2, 0, 0)})
	c.Assert(err, qt.IsNil)
	c.Assert(pr.GetParams().Axes, qt.DeepEquals, []int{0, 1})
}
