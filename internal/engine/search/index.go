package search

import (
	"bytes"

	"github.com/dshills/ansistr/internal/engine/cancel"
)

// IndexByte returns the index of the first c in hay, or -1.
// With an active poller the window is scanned in granularity-sized chunks.
func IndexByte(hay []byte, c byte, p *cancel.Poller) (int, error) {
	if !p.Active() {
		return bytes.IndexByte(hay, c), nil
	}
	g := p.Granularity()
	for off := 0; off < len(hay); off += g {
		end := min(off+g, len(hay))
		if i := bytes.IndexByte(hay[off:end], c); i >= 0 {
			p.Step(i + 1)
			return off + i, nil
		}
		if p.Step(end - off) {
			return -1, cancel.ErrCanceled
		}
	}
	return -1, nil
}

// LastIndexByte returns the index of the last c in hay, or -1.
func LastIndexByte(hay []byte, c byte, p *cancel.Poller) (int, error) {
	if !p.Active() {
		return bytes.LastIndexByte(hay, c), nil
	}
	g := p.Granularity()
	for end := len(hay); end > 0; end -= g {
		off := max(end-g, 0)
		if i := bytes.LastIndexByte(hay[off:end], c); i >= 0 {
			p.Step(end - off - i)
			return off + i, nil
		}
		if p.Step(end - off) {
			return -1, cancel.ErrCanceled
		}
	}
	return -1, nil
}

// Index returns the index of the first occurrence of pat in hay, or -1.
func Index(hay, pat []byte, m Method, t Tuning, p *cancel.Poller) (int, error) {
	f := NewFinder(pat, m, len(hay), t)
	defer f.Release()
	return f.Index(hay, p)
}

// LastIndex returns the index of the last occurrence of pat in hay, or -1.
func LastIndex(hay, pat []byte, m Method, t Tuning, p *cancel.Poller) (int, error) {
	f := NewFinder(pat, m, len(hay), t)
	defer f.Release()
	return f.LastIndex(hay, p)
}

// Count returns the number of occurrences of pat in hay. With overlap the
// next scan resumes one byte after a match, otherwise after its end.
// On cancellation the count found so far is returned with the error.
func Count(hay, pat []byte, m Method, t Tuning, overlap bool, p *cancel.Poller) (int, error) {
	f := NewFinder(pat, m, len(hay), t)
	defer f.Release()

	advance := len(pat)
	if overlap {
		advance = 1
	}

	n := 0
	for i := 0; i+len(pat) <= len(hay); {
		j, err := f.Index(hay[i:], p)
		if err != nil {
			return n, err
		}
		if j < 0 {
			break
		}
		n++
		i += j + advance
	}
	return n, nil
}
