package buffer

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
)

// ErrAllocLimit is returned by allocators asked for more than their limit.
var ErrAllocLimit = errors.New("allocation exceeds limit")

// Allocator provides the storage for owned and embedded buffers.
// Alloc returns a slice of exactly n bytes. Free receives slices previously
// returned by Alloc; the caller must not use them afterwards.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(p []byte)
}

// HeapAllocator allocates with make and leaves reclamation to the GC.
// A positive Limit caps single allocations.
type HeapAllocator struct {
	Limit int
}

// Alloc implements Allocator. A runtime allocation panic is returned as an error.
func (h HeapAllocator) Alloc(n int) (p []byte, err error) {
	if n < 0 || (h.Limit > 0 && n > h.Limit) {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocLimit, n)
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("allocate %d bytes: %v", n, r)
		}
	}()
	return make([]byte, n), nil
}

// Free implements Allocator.
func (HeapAllocator) Free([]byte) {}

// Size classes recycled by PoolAllocator: powers of two from 64 B to 1 MiB.
const (
	minClassShift = 6
	maxClassShift = 20
	numClasses    = maxClassShift - minClassShift + 1
)

// PoolAllocator recycles power-of-two slabs through per-class sync.Pools.
// Requests above the largest class go straight to the heap.
// It is safe for concurrent use.
type PoolAllocator struct {
	heap    HeapAllocator
	classes [numClasses]sync.Pool
}

// NewPoolAllocator creates a pool allocator. A positive limit caps single
// allocations.
func NewPoolAllocator(limit int) *PoolAllocator {
	return &PoolAllocator{heap: HeapAllocator{Limit: limit}}
}

// classFor returns the smallest class holding n bytes, or -1.
func classFor(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	if n > 1<<maxClassShift {
		return -1
	}
	return bits.Len(uint(n-1)) - minClassShift
}

// Alloc implements Allocator. The returned slice is zeroed.
func (p *PoolAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 || (p.heap.Limit > 0 && n > p.heap.Limit) {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocLimit, n)
	}
	c := classFor(n)
	if c < 0 {
		return p.heap.Alloc(n)
	}
	if v := p.classes[c].Get(); v != nil {
		s := (*(v.(*[]byte)))[:n]
		clear(s)
		return s, nil
	}
	// The limit was checked against n; the slab may round past it.
	s, err := HeapAllocator{}.Alloc(1 << (c + minClassShift))
	if err != nil {
		return nil, err
	}
	return s[:n], nil
}

// Free implements Allocator. Slices whose capacity is not exactly a class
// size are left to the GC.
func (p *PoolAllocator) Free(s []byte) {
	c := cap(s)
	if c < 1<<minClassShift || c > 1<<maxClassShift || c&(c-1) != 0 {
		return
	}
	s = s[:0]
	p.classes[bits.Len(uint(c))-1-minClassShift].Put(&s)
}
