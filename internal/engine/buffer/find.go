package buffer

import (
	"bytes"

	"github.com/dshills/ansistr/internal/engine/cancel"
	"github.com/dshills/ansistr/internal/engine/search"
)

// scanFunc searches a window and returns an index into it, or -1.
type scanFunc func(win []byte, p *cancel.Poller) (int, error)

// scan runs fn over the window [left, right]. It returns a buffer position,
// Size when nothing was found or the window was rejected, and -1 for an
// absent buffer.
func (b *StringBuffer) scan(op string, left, right int, sig cancel.Signal, fn scanFunc) (int, error) {
	size := b.hdr.size
	lo, hi, err := b.window(op, left, right)
	if err != nil {
		return size, err
	}
	p := b.poller(sig)
	i, err := fn(b.data[lo:hi], &p)
	p.Flush()
	if err != nil {
		return size, canceled(op)
	}
	if i < 0 {
		return size, nil
	}
	return lo + i, nil
}

// FindSingle returns the first position of c in [left, right].
func (b *StringBuffer) FindSingle(left, right int, c byte, sig cancel.Signal) (pos int, err error) {
	const op = "FindSingle"
	defer b.observe(op, &err)
	if b.absent() {
		return -1, absent(op)
	}
	return b.scan(op, left, right, sig, func(win []byte, p *cancel.Poller) (int, error) {
		return search.IndexByte(win, c, p)
	})
}

// RFindSingle returns the last position of c in [left, right].
func (b *StringBuffer) RFindSingle(left, right int, c byte, sig cancel.Signal) (pos int, err error) {
	const op = "RFindSingle"
	defer b.observe(op, &err)
	if b.absent() {
		return -1, absent(op)
	}
	return b.scan(op, left, right, sig, func(win []byte, p *cancel.Poller) (int, error) {
		return search.LastIndexByte(win, c, p)
	})
}

// Find returns the first position of the pattern in [left, right]. The
// whole match must lie inside the window.
func (b *StringBuffer) Find(left, right int, items []byte, count int, m search.Method, sig cancel.Signal) (pos int, err error) {
	const op = "Find"
	defer b.observe(op, &err)
	return b.find(op, left, right, items, count, m, sig, search.Index)
}

// RFind returns the last position of the pattern in [left, right].
func (b *StringBuffer) RFind(left, right int, items []byte, count int, m search.Method, sig cancel.Signal) (pos int, err error) {
	const op = "RFind"
	defer b.observe(op, &err)
	return b.find(op, left, right, items, count, m, sig, search.LastIndex)
}

type patternFunc func(hay, pat []byte, m search.Method, t search.Tuning, p *cancel.Poller) (int, error)

func (b *StringBuffer) find(op string, left, right int, items []byte, count int, m search.Method, sig cancel.Signal, fn patternFunc) (int, error) {
	if b.absent() {
		return -1, absent(op)
	}
	pat, err := normalizeItems(op, items, count)
	if err != nil {
		return b.hdr.size, err
	}
	if !m.Valid() {
		return b.hdr.size, newError(op, KindInvalidArgument, ReasonBadFindMethod)
	}
	return b.scan(op, left, right, sig, func(win []byte, p *cancel.Poller) (int, error) {
		return fn(win, pat, m, b.tuning, p)
	})
}

type setFunc func(hay []byte, s search.ByteSet, p *cancel.Poller) (int, error)

func (b *StringBuffer) findSet(op string, left, right int, items []byte, count int, sig cancel.Signal, fn setFunc) (int, error) {
	if b.absent() {
		return -1, absent(op)
	}
	set, err := normalizeItems(op, items, count)
	if err != nil {
		return b.hdr.size, err
	}
	s := search.NewByteSet(set)
	return b.scan(op, left, right, sig, func(win []byte, p *cancel.Poller) (int, error) {
		return fn(win, s, p)
	})
}

// FirstOf returns the first position in [left, right] holding a byte of items.
func (b *StringBuffer) FirstOf(left, right int, items []byte, count int, sig cancel.Signal) (pos int, err error) {
	const op = "FirstOf"
	defer b.observe(op, &err)
	return b.findSet(op, left, right, items, count, sig, search.IndexAny)
}

// FirstNotOf returns the first position in [left, right] holding a byte not in items.
func (b *StringBuffer) FirstNotOf(left, right int, items []byte, count int, sig cancel.Signal) (pos int, err error) {
	const op = "FirstNotOf"
	defer b.observe(op, &err)
	return b.findSet(op, left, right, items, count, sig, search.IndexNotAny)
}

// LastOf returns the last position in [left, right] holding a byte of items.
func (b *StringBuffer) LastOf(left, right int, items []byte, count int, sig cancel.Signal) (pos int, err error) {
	const op = "LastOf"
	defer b.observe(op, &err)
	return b.findSet(op, left, right, items, count, sig, search.LastIndexAny)
}

// LastNotOf returns the last position in [left, right] holding a byte not in items.
func (b *StringBuffer) LastNotOf(left, right int, items []byte, count int, sig cancel.Signal) (pos int, err error) {
	const op = "LastNotOf"
	defer b.observe(op, &err)
	return b.findSet(op, left, right, items, count, sig, search.LastIndexNotAny)
}

// Count returns the number of pattern occurrences in [left, right].
// Rejected arguments count 0; a canceled count returns the matches seen so far.
func (b *StringBuffer) Count(left, right int, items []byte, count int, m search.Method, overlap bool, sig cancel.Signal) (n int, err error) {
	const op = "Count"
	defer b.observe(op, &err)
	if b.absent() {
		return -1, absent(op)
	}
	pat, err := normalizeItems(op, items, count)
	if err != nil {
		return 0, err
	}
	if !m.Valid() {
		return 0, newError(op, KindInvalidArgument, ReasonBadFindMethod)
	}
	lo, hi, err := b.window(op, left, right)
	if err != nil {
		return 0, err
	}
	p := b.poller(sig)
	n, err = search.Count(b.data[lo:hi], pat, m, b.tuning, overlap, &p)
	p.Flush()
	if err != nil {
		return n, canceled(op)
	}
	return n, nil
}

// Compare reports whether the content at pos starts with the pattern.
func (b *StringBuffer) Compare(pos int, items []byte, count int, sig cancel.Signal) (equal bool, err error) {
	const op = "Compare"
	defer b.observe(op, &err)
	if b.absent() {
		return false, absent(op)
	}
	pat, err := normalizeItems(op, items, count)
	if err != nil {
		return false, err
	}
	if pos < 0 {
		return false, newError(op, KindInvalidArgument, ReasonBadOffset)
	}
	if pos >= b.hdr.size {
		return false, newError(op, KindRange, ReasonLeftBeyondSize)
	}
	if pos+len(pat) > b.hdr.size {
		return false, nil
	}

	p := b.poller(sig)
	defer p.Flush()
	got := b.data[pos : pos+len(pat)]
	g := p.Granularity()
	for off := 0; off < len(pat); off += g {
		end := min(off+g, len(pat))
		if !bytes.Equal(got[off:end], pat[off:end]) {
			return false, nil
		}
		if end < len(pat) && p.Step(end-off) {
			return false, canceled(op)
		}
	}
	return true, nil
}
