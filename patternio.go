// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import (
	"iter"

	"github.com/gaissmai/ndcell/internal/tree"
)

// Blend selects how PasteStream combines incoming cells with the
// automaton's existing state (spec §4.3, §4.8).
type Blend = tree.Blend

const (
	// Overwrite writes every streamed cell, including those the stream
	// gives the default state; cells the stream does not mention are left
	// unchanged.
	Overwrite = tree.Overwrite
	// OrNonzero replaces only cells the stream gives a non-default
	// state; other cells are left unchanged.
	OrNonzero = tree.OrNonzero
)

// Enumerate yields every non-default (position, state) pair of the
// automaton's universe within r (spec §4.8 "enumerate non-default cells
// of a rectangle"). This is the entire read side of the pattern-I/O
// contract; any concrete textual format (RLE, CXRLE, ...) is built on
// top of it outside this module.
func (au *Automaton) Enumerate(r Rect) iter.Seq2[World, uint8] {
	return au.tree.Enumerate(r)
}

// PasteStream writes a stream of (position, state) pairs, already
// expressed in the automaton's storage coordinates, into the universe,
// blended per blend (spec §4.8 "paste a stream of (position, state) into
// the tree"). This is the entire write side of the pattern-I/O contract.
func (au *Automaton) PasteStream(cells iter.Seq2[World, uint8], blend Blend) error {
	au.tree.PasteStream(cells, blend)
	return au.arena.CheckBudget()
}

// CellRecord is one non-default cell as captured by ExportSnapshot, which
// collects every such cell within the automaton's current bounding box
// into a plain slice, suitable for handing to an external codec or for
// round-tripping through ImportSnapshot. ExportSnapshot is a
// reference consumer of Enumerate, not a persistence format in its own
// right (spec §4.8's contract stops at enumerate/paste; any on-disk
// encoding is external).
type CellRecord struct {
	Pos   World
	State uint8
}

// ExportSnapshot enumerates the automaton's full bounding box into a
// slice of records.
func (au *Automaton) ExportSnapshot() []CellRecord {
	box := au.BoundingBox()
	var out []CellRecord
	for pos, state := range au.Enumerate(box) {
		out = append(out, CellRecord{Pos: pos, State: state})
	}
	return out
}

// ImportSnapshot pastes records (as produced by ExportSnapshot) into the
// automaton with Overwrite semantics: every recorded position is set to
// its recorded state, and positions absent from records are left
// untouched. Importing the export of a freshly-constructed automaton
// reproduces its cell contents exactly.
func (au *Automaton) ImportSnapshot(records []CellRecord) error {
	seq := func(yield func(World, uint8) bool) {
		for _, r := range records {
			if !yield(r.Pos, r.State) {
				return
			}
		}
	}
	return au.PasteStream(seq, Overwrite)
}
