package search

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/dshills/ansistr/internal/engine/cancel"
)

// ByteSet is a set of byte values used by the any-of and none-of scans.
type ByteSet struct {
	bits *bitset.BitSet
}

// NewByteSet builds a set containing every byte of items.
func NewByteSet(items []byte) ByteSet {
	b := bitset.New(256)
	for _, c := range items {
		b.Set(uint(c))
	}
	return ByteSet{bits: b}
}

// Contains reports whether c is in the set.
func (s ByteSet) Contains(c byte) bool {
	return s.bits != nil && s.bits.Test(uint(c))
}

// Len returns the number of distinct bytes in the set.
func (s ByteSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// IndexAny returns the index of the first byte of hay in s, or -1.
func IndexAny(hay []byte, s ByteSet, p *cancel.Poller) (int, error) {
	return scanForward(hay, s, true, p)
}

// IndexNotAny returns the index of the first byte of hay not in s, or -1.
func IndexNotAny(hay []byte, s ByteSet, p *cancel.Poller) (int, error) {
	return scanForward(hay, s, false, p)
}

// LastIndexAny returns the index of the last byte of hay in s, or -1.
func LastIndexAny(hay []byte, s ByteSet, p *cancel.Poller) (int, error) {
	return scanBackward(hay, s, true, p)
}

// LastIndexNotAny returns the index of the last byte of hay not in s, or -1.
func LastIndexNotAny(hay []byte, s ByteSet, p *cancel.Poller) (int, error) {
	return scanBackward(hay, s, false, p)
}

func scanForward(hay []byte, s ByteSet, member bool, p *cancel.Poller) (int, error) {
	for i, c := range hay {
		if p.Step(1) {
			return -1, cancel.ErrCanceled
		}
		if s.Contains(c) == member {
			return i, nil
		}
	}
	return -1, nil
}

func scanBackward(hay []byte, s ByteSet, member bool, p *cancel.Poller) (int, error) {
	for i := len(hay) - 1; i >= 0; i-- {
		if p.Step(1) {
			return -1, cancel.ErrCanceled
		}
		if s.Contains(hay[i]) == member {
			return i, nil
		}
	}
	return -1, nil
}
