// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package arena

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"
)

// ErrExhausted is returned by Arena.CheckBudget when the hard live-node
// cap is exceeded even after a sweep (spec §5 "ArenaExhausted").
var ErrExhausted = errors.New("arena: exhausted: live node count exceeds hard cap")

// Options configures resource bounds for an Arena (spec §5 "resource
// bounds"). The zero value disables both caps.
type Options struct {
	// SoftCap, once exceeded, triggers a Sweep on the next CheckBudget
	// call. Zero disables the soft cap.
	SoftCap int64
	// HardCap, once exceeded even after a sweep, fails the operation
	// with ErrExhausted. Zero disables the hard cap.
	HardCap int64
}

// Arena is the canonical node store for a single universe (spec §4.2). It
// is internally synchronized and may be shared by multiple trees and
// safely used by concurrent readers; interning itself takes a brief
// exclusive lock only on the slow (not-yet-present) path.
//
// The zero value is not usable; construct with New.
type Arena struct {
	ndim int

	mu      sync.RWMutex
	seed    maphash.Seed
	buckets map[uint64][]weak.Pointer[Node]

	leaves []*Node // 256 canonical leaves, kept strongly resident
	empty  []atomic.Pointer[Node]

	nextID   atomic.Uint64
	live     atomic.Int64
	epoch    atomic.Uint64
	softCap  int64
	hardCap  int64
	allocs   atomic.Int64
	sweeps   atomic.Int64
	scratch  *pool
}

// New creates an Arena for an ndim-dimensional lattice (1 <= ndim <= 6).
// ndim is validated by the caller (spec's UnsupportedDimension check
// lives at the public automaton boundary, not here).
func New(ndim int, opts Options) *Arena {
	if ndim < 1 || ndim > 6 {
		panic("arena: ndim out of range")
	}
	a := &Arena{
		ndim:    ndim,
		seed:    maphash.MakeSeed(),
		buckets: make(map[uint64][]weak.Pointer[Node]),
		leaves:  make([]*Node, 256),
		empty:   make([]atomic.Pointer[Node], 256), // grown lazily, index by layer
		softCap: opts.SoftCap,
		hardCap: opts.HardCap,
		scratch: newPool(),
	}
	for s := 0; s < 256; s++ {
		a.leaves[s] = a.newLeaf(uint8(s))
	}
	return a
}

// NDim returns the arena's lattice dimension.
func (a *Arena) NDim() int { return a.ndim }

// Epoch returns the current rule epoch; every result slot computed under
// a prior epoch reads as absent (spec §4.5).
func (a *Arena) Epoch() uint64 { return a.epoch.Load() }

// BumpEpoch invalidates every cached HashLife result in O(1), used when
// the automaton's rule changes (spec §4.5, §4.6 set_rule).
func (a *Arena) BumpEpoch() { a.epoch.Add(1) }

// LiveCount returns the number of canonical nodes the arena believes are
// currently reachable, maintained via runtime.AddCleanup callbacks fired
// as Go's garbage collector reclaims unreferenced nodes. It is a lower
// bound shortly after a collection and an upper bound otherwise.
func (a *Arena) LiveCount() int64 { return a.live.Load() }

// Stats reports lifetime allocation and sweep counters, useful for
// tuning resource bounds (mirrors the teacher's pool.Stats debug hook).
func (a *Arena) Stats() (live, totalAllocated, sweeps int64) {
	return a.live.Load(), a.allocs.Load(), a.sweeps.Load()
}

// CheckBudget sweeps if the soft cap is exceeded, then fails with
// ErrExhausted if the hard cap is still exceeded afterward (spec §5).
func (a *Arena) CheckBudget() error {
	if a.softCap > 0 && a.live.Load() > a.softCap {
		a.Sweep()
	}
	if a.hardCap > 0 && a.live.Load() > a.hardCap {
		return ErrExhausted
	}
	return nil
}

// Sweep nudges the Go runtime to reclaim unreferenced canonical nodes and
// compacts dead weak entries out of the intern table (spec §4.2 "periodic
// or threshold-triggered garbage sweep"). It never invalidates a node
// that is still reachable from any tree root, result slot holder, or
// another live node's children.
func (a *Arena) Sweep() {
	a.sweeps.Add(1)
	runtime.GC()

	a.mu.Lock()
	defer a.mu.Unlock()
	for h, bucket := range a.buckets {
		kept := bucket[:0]
		for _, wp := range bucket {
			if wp.Value() != nil {
				kept = append(kept, wp)
			}
		}
		if len(kept) == 0 {
			delete(a.buckets, h)
		} else {
			a.buckets[h] = kept
		}
	}
}

func (a *Arena) newID() uint64 { return a.nextID.Add(1) }

func (a *Arena) track(n *Node) {
	a.live.Add(1)
	a.allocs.Add(1)
	runtime.AddCleanup(n, func(live *atomic.Int64) { live.Add(-1) }, &a.live)
}

func (a *Arena) newLeaf(state uint8) *Node {
	n := &Node{id: a.newID(), ndim: a.ndim, layer: 0, state: state}
	if state != 0 {
		n.population = big.NewInt(1)
	} else {
		n.population = new(big.Int)
		n.empty = true
	}
	a.track(n)
	return n
}

// InternLeaf returns the canonical leaf node for the given cell state.
// Always returns the same *Node for the same state (spec §4.2).
func (a *Arena) InternLeaf(state uint8) *Node { return a.leaves[state] }

// validateChildren checks arity and layer consistency for a prospective
// branch; violations are programming bugs (spec §7
// InternalInvariantViolated), never triggered by well-formed callers.
func (a *Arena) validateChildren(layer int, children []*Node) {
	want := 1 << uint(a.ndim)
	if len(children) != want {
		panic(fmt.Sprintf("arena: branch at layer %d needs %d children, got %d", layer, want, len(children)))
	}
	for i, c := range children {
		if c.layer != layer-1 {
			panic(fmt.Sprintf("arena: child %d has layer %d, want %d", i, c.layer, layer-1))
		}
		if c.ndim != a.ndim {
			panic("arena: child has mismatched dimension")
		}
	}
}

func (a *Arena) hashBranch(layer int, children []*Node) uint64 {
	var h maphash.Hash
	h.SetSeed(a.seed)
	var buf [8]byte
	putU64(buf[:], uint64(layer))
	h.Write(buf[:])
	for _, c := range children {
		putU64(buf[:], c.id)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func putU64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

func sameChildren(n *Node, layer int, children []*Node) bool {
	if n.layer != layer || len(n.children) != len(children) {
		return false
	}
	for i, c := range children {
		if n.children[i] != c {
			return false
		}
	}
	return true
}

// lookup scans the bucket for h under whichever lock discipline the
// caller already holds (read or write).
func (a *Arena) lookup(h uint64, layer int, children []*Node) *Node {
	for _, wp := range a.buckets[h] {
		if n := wp.Value(); n != nil && sameChildren(n, layer, children) {
			return n
		}
	}
	return nil
}

// InternBranch returns the canonical branch node for (layer, children),
// constructing and publishing one if this exact content has not been
// seen before. Concurrent callers racing on the same content are
// guaranteed to receive the same *Node (spec §4.2, §5).
func (a *Arena) InternBranch(layer int, children []*Node) *Node {
	a.validateChildren(layer, children)

	h := a.hashBranch(layer, children)

	a.mu.RLock()
	if n := a.lookup(h, layer, children); n != nil {
		a.mu.RUnlock()
		return n
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	// double-checked: someone may have published while we waited for the lock.
	if n := a.lookup(h, layer, children); n != nil {
		return n
	}

	n := &Node{
		id:       a.newID(),
		ndim:     a.ndim,
		layer:    layer,
		children: append([]*Node(nil), children...),
	}
	pop := new(big.Int)
	for _, c := range children {
		pop.Add(pop, c.population)
	}
	n.population = pop
	n.empty = pop.Sign() == 0
	a.track(n)

	a.buckets[h] = append(a.buckets[h], weak.Make(n))
	return n
}

// Empty returns the canonical empty node at the given layer, built by
// recursive doubling and memoized (spec §3 "empty subtrees of every
// layer are a single shared node each"; SPEC_FULL.md original_source/
// core/src/lib.rs grounds the doubling memoization).
func (a *Arena) Empty(layer int) *Node {
	if layer == 0 {
		return a.leaves[0]
	}
	if layer < len(a.empty) {
		if n := a.empty[layer].Load(); n != nil {
			return n
		}
	}
	child := a.Empty(layer - 1)
	children := make([]*Node, 1<<uint(a.ndim))
	for i := range children {
		children[i] = child
	}
	n := a.InternBranch(layer, children)
	a.growEmptyCache(layer)
	a.empty[layer].Store(n)
	return n
}

func (a *Arena) growEmptyCache(layer int) {
	if layer < len(a.empty) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if layer >= len(a.empty) {
		grown := make([]atomic.Pointer[Node], layer+1)
		copy(grown, a.empty)
		a.empty = grown
	}
}

// ScratchChildren borrows a reusable []*Node buffer of the correct arity
// for assembling a branch's children before interning, avoiding a fresh
// allocation on every write path (adapted from the teacher's pool.go).
func (a *Arena) ScratchChildren() []*Node {
	return a.scratch.Get(1 << uint(a.ndim))
}

// PutScratchChildren returns a buffer obtained from ScratchChildren.
func (a *Arena) PutScratchChildren(buf []*Node) { a.scratch.Put(buf) }
