package buffer

import (
	"github.com/dshills/ansistr/internal/engine/cancel"
	"github.com/dshills/ansistr/internal/engine/search"
)

// Insert places the pattern at pos; End or Size() appends. Without
// allowReserve an insert that does not fit fails with ErrCapacity. With it,
// growth happens before any byte moves, so a failure leaves the buffer
// unchanged. items may alias the buffer's own content.
func (b *StringBuffer) Insert(pos int, items []byte, count int, allowReserve bool, sig cancel.Signal) (err error) {
	const op = "Insert"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	src, err := normalizeItems(op, items, count)
	if err != nil {
		return err
	}
	size := b.hdr.size
	if pos == End {
		pos = size
	}
	switch {
	case pos < 0:
		return newError(op, KindInvalidArgument, ReasonBadOffset)
	case pos > size:
		return newError(op, KindRange, ReasonLeftBeyondSize)
	}
	need := size + len(src) + 1
	if need > b.hdr.capacity && !allowReserve {
		return newError(op, KindCapacity, ReasonInsufficient)
	}

	p := b.poller(sig)
	if p.Check() {
		return canceled(op)
	}
	src = b.detach(src)
	if err := b.reserve(op, need); err != nil {
		return err
	}

	d := b.data
	copy(d[pos+len(src):], d[pos:size+1])
	copy(d[pos:], src)
	b.hdr.size = size + len(src)
	p.Step(size - pos + len(src))
	p.Flush()
	return nil
}

// RemoveFrom deletes count bytes starting at pos. Capacity is unchanged.
func (b *StringBuffer) RemoveFrom(pos, count int, sig cancel.Signal) (err error) {
	const op = "RemoveFrom"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	switch {
	case pos < 0:
		return newError(op, KindInvalidArgument, ReasonBadOffset)
	case count <= 0:
		return newError(op, KindInvalidArgument, ReasonZeroCount)
	case pos+count > b.hdr.size:
		return newError(op, KindRange, ReasonLeftPlusCountBeyondSize)
	}

	p := b.poller(sig)
	if p.Check() {
		return canceled(op)
	}
	size := b.hdr.size
	copy(b.data[pos:], b.data[pos+count:size+1])
	b.hdr.size = size - count
	p.Step(size - pos - count)
	p.Flush()
	return nil
}

// Remove deletes every non-overlapping occurrence of the pattern in
// [left, right], scanning left to right. The window's right edge moves left
// with each removal. On cancellation the occurrences found so far stay
// removed and the rest of the content is intact.
func (b *StringBuffer) Remove(left, right int, items []byte, count int, sig cancel.Signal) (err error) {
	const op = "Remove"
	defer b.observe(op, &err)
	return b.substitute(op, left, right, items, count, nil, sig)
}

// substitute rewrites every match of the pattern in [left, right] with
// repl, which must not be longer than the pattern. It makes one forward
// pass with a write cursor that never passes the read cursor.
func (b *StringBuffer) substitute(op string, left, right int, items []byte, count int, repl []byte, sig cancel.Signal) error {
	if b.absent() {
		return absent(op)
	}
	pat, err := normalizeItems(op, items, count)
	if err != nil {
		return err
	}
	lo, hi, err := b.window(op, left, right)
	if err != nil {
		return err
	}
	pat = b.detach(pat)
	repl = b.detach(repl)

	f := search.NewFinder(pat, search.MethodAuto, hi-lo, b.tuning)
	defer f.Release()
	p := b.poller(sig)
	defer p.Flush()

	d := b.data
	size := b.hdr.size
	w, r := lo, lo
	for r < hi {
		j, err := f.Index(d[r:hi], &p)
		if err != nil || j < 0 {
			break
		}
		if w != r {
			copy(d[w:], d[r:r+j])
		}
		w += j
		w += copy(d[w:], repl)
		r += j + len(pat)
	}
	if w != r {
		copy(d[w:], d[r:size+1])
		b.hdr.size = size - (r - w)
	}
	if p.Stopped() {
		return canceled(op)
	}
	return nil
}

// Replace substitutes after for every non-overlapping occurrence of before
// in [left, right]. An empty after removes the matches.
//
// When after is longer, all matches are located and the total growth is
// reserved before any byte changes; if the room cannot be found the call
// fails with the buffer unchanged. Cancellation is observed while matches
// are located. Otherwise the rewrite is a single forward pass that may stop
// at any match boundary.
func (b *StringBuffer) Replace(left, right int, before []byte, nb int, after []byte, na int, allowReserve bool, sig cancel.Signal) (err error) {
	const op = "Replace"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	repl, err := normalizeReplacement(op, after, na)
	if err != nil {
		return err
	}
	pat, err := normalizeItems(op, before, nb)
	if err != nil {
		return err
	}
	if len(repl) <= len(pat) {
		return b.substitute(op, left, right, pat, len(pat), repl, sig)
	}

	lo, hi, err := b.window(op, left, right)
	if err != nil {
		return err
	}
	f := search.NewFinder(pat, search.MethodAuto, hi-lo, b.tuning)
	defer f.Release()
	p := b.poller(sig)
	defer p.Flush()

	var hits []int
	for r := lo; r < hi; {
		j, err := f.Index(b.data[r:hi], &p)
		if err != nil {
			return canceled(op)
		}
		if j < 0 {
			break
		}
		hits = append(hits, r+j)
		r += j + len(pat)
	}
	if len(hits) == 0 {
		return nil
	}

	size := b.hdr.size
	grow := len(hits) * (len(repl) - len(pat))
	need := size + grow + 1
	if need > b.hdr.capacity && !allowReserve {
		return newError(op, KindCapacity, ReasonInsufficient)
	}
	repl = b.detach(repl)
	if err := b.reserve(op, need); err != nil {
		return err
	}

	// Rewrite back to front so no unread byte is overwritten.
	d := b.data
	src, dst := size, size+grow
	d[dst] = 0
	for k := len(hits) - 1; k >= 0; k-- {
		tail := hits[k] + len(pat)
		n := src - tail
		dst -= n
		copy(d[dst:], d[tail:src])
		dst -= len(repl)
		copy(d[dst:], repl)
		src = hits[k]
	}
	b.hdr.size = size + grow
	p.Step(size + grow - hits[0])
	return nil
}

// TrimLeft removes the longest prefix of [left, right] made of bytes in the set.
func (b *StringBuffer) TrimLeft(left, right int, set []byte, count int, sig cancel.Signal) (err error) {
	const op = "TrimLeft"
	defer b.observe(op, &err)
	return b.trim(op, left, right, set, count, sig, true, false)
}

// TrimRight removes the longest suffix of [left, right] made of bytes in the set.
func (b *StringBuffer) TrimRight(left, right int, set []byte, count int, sig cancel.Signal) (err error) {
	const op = "TrimRight"
	defer b.observe(op, &err)
	return b.trim(op, left, right, set, count, sig, false, true)
}

// Trim trims both edges of [left, right]. Trimming an already trimmed
// window reports ReasonNothingTrimmed and changes nothing.
func (b *StringBuffer) Trim(left, right int, set []byte, count int, sig cancel.Signal) (err error) {
	const op = "Trim"
	defer b.observe(op, &err)
	return b.trim(op, left, right, set, count, sig, true, true)
}

func (b *StringBuffer) trim(op string, left, right int, items []byte, count int, sig cancel.Signal, leading, trailing bool) error {
	if b.absent() {
		return absent(op)
	}
	if b.hdr.size == 0 {
		return newError(op, KindState, ReasonEmpty)
	}
	set, err := normalizeItems(op, items, count)
	if err != nil {
		return err
	}
	lo, hi, err := b.window(op, left, right)
	if err != nil {
		return err
	}
	s := search.NewByteSet(set)
	p := b.poller(sig)
	defer p.Flush()

	removed := 0
	if trailing {
		j, err := search.LastIndexNotAny(b.data[lo:hi], s, &p)
		if err != nil {
			return canceled(op)
		}
		keep := lo + j + 1
		if n := hi - keep; n > 0 {
			b.cut(keep, n)
			hi, removed = keep, removed+n
		}
	}
	if leading && hi > lo {
		i, err := search.IndexNotAny(b.data[lo:hi], s, &p)
		if err != nil {
			return canceled(op)
		}
		if i < 0 {
			i = hi - lo
		}
		if i > 0 {
			b.cut(lo, i)
			removed += i
		}
	}
	if removed == 0 {
		return newError(op, KindState, ReasonNothingTrimmed)
	}
	return nil
}

// cut deletes n bytes at pos and moves the terminator.
func (b *StringBuffer) cut(pos, n int) {
	size := b.hdr.size
	copy(b.data[pos:], b.data[pos+n:size+1])
	b.hdr.size = size - n
}

// CopySubBuffer copies [left, first separator) into dst, replacing its
// content. It returns the position after the separator, or Size() when the
// window holds none and everything up to right was copied. It returns -1
// when dst cannot hold the copy. When dst is b the returned position refers
// to the content before the copy.
func (b *StringBuffer) CopySubBuffer(left, right int, seps []byte, count int, dst *StringBuffer, sig cancel.Signal) (next int, err error) {
	const op = "CopySubBuffer"
	defer b.observe(op, &err)
	if b.absent() {
		return -1, absent(op)
	}
	if dst.absent() {
		return -1, newError(op, KindAbsentContainer, ReasonSubContainer)
	}
	size := b.hdr.size
	set, err := normalizeItems(op, seps, count)
	if err != nil {
		return size, err
	}
	lo, hi, err := b.window(op, left, right)
	if err != nil {
		return size, err
	}

	p := b.poller(sig)
	i, err := search.IndexAny(b.data[lo:hi], search.NewByteSet(set), &p)
	p.Flush()
	if err != nil {
		return size, canceled(op)
	}
	end, next := hi, size
	if i >= 0 {
		end, next = lo+i, lo+i+1
	}
	if err := dst.assign(op, b.data[lo:end]); err != nil {
		return -1, err
	}
	return next, nil
}

// CopySubBufferFrom copies count bytes at pos into dst, replacing its
// content, and returns pos+count, or -1 when dst cannot hold the copy.
func (b *StringBuffer) CopySubBufferFrom(pos, count int, dst *StringBuffer, sig cancel.Signal) (next int, err error) {
	const op = "CopySubBufferFrom"
	defer b.observe(op, &err)
	if b.absent() {
		return -1, absent(op)
	}
	if dst.absent() {
		return -1, newError(op, KindAbsentContainer, ReasonSubContainer)
	}
	size := b.hdr.size
	switch {
	case pos < 0:
		return size, newError(op, KindInvalidArgument, ReasonBadOffset)
	case count <= 0:
		return size, newError(op, KindInvalidArgument, ReasonZeroCount)
	case pos+count > size:
		return size, newError(op, KindRange, ReasonLeftPlusCountBeyondSize)
	}
	p := b.poller(sig)
	if p.Check() {
		return size, canceled(op)
	}
	if err := dst.assign(op, b.data[pos:pos+count]); err != nil {
		return -1, err
	}
	p.Step(count)
	p.Flush()
	return pos + count, nil
}

// assign replaces the content with src, growing when needed.
func (b *StringBuffer) assign(op string, src []byte) error {
	src = b.detach(src)
	if err := b.reserve(op, len(src)+1); err != nil {
		return err
	}
	copy(b.data, src)
	b.setSize(len(src))
	return nil
}
