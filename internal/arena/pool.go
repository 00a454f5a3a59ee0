// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package arena

import (
	"sync"
	"sync/atomic"
)

// pool is a type-safe wrapper around sync.Pool specialized for reusable
// []*Node scratch buffers, adapted from the teacher's node-object pool
// (gaissmai/bart pool.go). Canonical Node allocation itself cannot be
// pooled here: nodes are interned via weak references and reclaimed by
// the garbage collector (see interner.go), so pooling instead targets
// the short-lived child-slice buffers that tree growth and the step
// engine build up before handing them to InternBranch.
type pool struct {
	sync.Pool

	totalAllocated atomic.Int64 // total number of buffers ever allocated
	currentLive    atomic.Int64 // buffers currently checked out
}

func newPool() *pool {
	p := &pool{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return make([]*Node, 0, 64)
	}
	return p
}

// Get returns a buffer with length n, reusing pooled capacity when
// possible.
func (p *pool) Get(n int) []*Node {
	p.currentLive.Add(1)
	buf := p.Pool.Get().([]*Node)
	if cap(buf) < n {
		buf = make([]*Node, n)
		return buf
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = nil
	}
	return buf
}

// Put returns a buffer obtained from Get back to the pool.
func (p *pool) Put(buf []*Node) {
	p.currentLive.Add(-1)
	p.Pool.Put(buf[:0])
}

// Stats returns the number of currently checked-out buffers and the
// total number ever allocated.
func (p *pool) Stats() (live, total int64) {
	return p.currentLive.Load(), p.totalAllocated.Load()
}
