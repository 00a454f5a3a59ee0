// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ndcell

import "github.com/gaissmai/ndcell/internal/coord"

// MaxDim is the largest lattice dimension this package supports (spec §7
// UnsupportedDimension).
const MaxDim = coord.MaxDim

// World is an arbitrary-precision position or offset vector over the
// automaton's lattice (spec §3). Arithmetic on World values lives
// alongside the type in the internal coord package; this alias exposes
// it at the public boundary without duplicating the implementation.
type World = coord.World

// NewWorld builds a zero World vector with ndim axes.
func NewWorld(ndim int) World { return coord.NewWorld(ndim) }

// WorldFromInt64 builds a World vector from machine-integer components.
func WorldFromInt64(ndim int, vs ...int64) World { return coord.WorldFromInt64(ndim, vs...) }

// Rect is an axis-aligned, inclusive-bounded rectangle in World
// coordinates.
type Rect = coord.Rect

// NewRect builds a normalized Rect from two corner vectors.
func NewRect(low, high World) Rect { return coord.NewRect(low, high) }
