package search

import (
	"bytes"

	"github.com/dshills/ansistr/internal/engine/cancel"
)

// Finder holds a pattern and its precomputed tables so repeated scans over
// the same pattern do not rebuild them.
type Finder struct {
	pat    []byte
	method Method
	fwd    *skipTable
	bwd    *skipTable
}

// NewFinder prepares pat for searching windows of roughly window bytes.
// MethodAuto is resolved once, here. pat must not be empty.
func NewFinder(pat []byte, m Method, window int, t Tuning) *Finder {
	return &Finder{pat: pat, method: t.Select(m, len(pat), window)}
}

// Method returns the resolved method.
func (f *Finder) Method() Method {
	return f.method
}

// Len returns the pattern length.
func (f *Finder) Len() int {
	return len(f.pat)
}

// Release returns the finder's tables to the pool.
func (f *Finder) Release() {
	putTable(f.fwd)
	putTable(f.bwd)
	f.fwd, f.bwd = nil, nil
}

// Index returns the first position of the pattern in hay, or -1.
func (f *Finder) Index(hay []byte, p *cancel.Poller) (int, error) {
	switch {
	case len(f.pat) == 0 || len(f.pat) > len(hay):
		return -1, nil
	case len(f.pat) == 1:
		return IndexByte(hay, f.pat[0], p)
	case f.method == MethodSkipTable:
		if f.fwd == nil {
			f.fwd = getTable()
			f.fwd.buildForward(f.pat)
		}
		return indexSkip(hay, f.pat, f.fwd, p)
	default:
		return indexNaive(hay, f.pat, p)
	}
}

// LastIndex returns the last position of the pattern in hay, or -1.
func (f *Finder) LastIndex(hay []byte, p *cancel.Poller) (int, error) {
	switch {
	case len(f.pat) == 0 || len(f.pat) > len(hay):
		return -1, nil
	case len(f.pat) == 1:
		return LastIndexByte(hay, f.pat[0], p)
	case f.method == MethodSkipTable:
		if f.bwd == nil {
			f.bwd = getTable()
			f.bwd.buildBackward(f.pat)
		}
		return lastIndexSkip(hay, f.pat, f.bwd, p)
	default:
		return lastIndexNaive(hay, f.pat, p)
	}
}

func indexNaive(hay, pat []byte, p *cancel.Poller) (int, error) {
	m := len(pat)
	first := pat[0]
	for i := 0; i+m <= len(hay); i++ {
		if p.Step(1) {
			return -1, cancel.ErrCanceled
		}
		if hay[i] == first && bytes.Equal(hay[i+1:i+m], pat[1:]) {
			return i, nil
		}
	}
	return -1, nil
}

func lastIndexNaive(hay, pat []byte, p *cancel.Poller) (int, error) {
	m := len(pat)
	first := pat[0]
	for i := len(hay) - m; i >= 0; i-- {
		if p.Step(1) {
			return -1, cancel.ErrCanceled
		}
		if hay[i] == first && bytes.Equal(hay[i+1:i+m], pat[1:]) {
			return i, nil
		}
	}
	return -1, nil
}

func indexSkip(hay, pat []byte, t *skipTable, p *cancel.Poller) (int, error) {
	m := len(pat)
	last := pat[m-1]
	for i := 0; i+m <= len(hay); {
		if p.Step(1) {
			return -1, cancel.ErrCanceled
		}
		c := hay[i+m-1]
		if c == last && bytes.Equal(hay[i:i+m-1], pat[:m-1]) {
			return i, nil
		}
		i += t[c]
	}
	return -1, nil
}

func lastIndexSkip(hay, pat []byte, t *skipTable, p *cancel.Poller) (int, error) {
	m := len(pat)
	first := pat[0]
	for i := len(hay) - m; i >= 0; {
		if p.Step(1) {
			return -1, cancel.ErrCanceled
		}
		c := hay[i]
		if c == first && bytes.Equal(hay[i+1:i+m], pat[1:]) {
			return i, nil
		}
		i -= t[c]
	}
	return -1, nil
}
