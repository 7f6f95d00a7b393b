package buffer

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/dshills/ansistr/internal/engine/cancel"
	"github.com/dshills/ansistr/internal/engine/search"
	"github.com/dshills/ansistr/internal/gate"
)

// Mode describes who owns a buffer's storage.
type Mode uint8

const (
	ModeOwned    Mode = iota // Allocated and released by the buffer
	ModeAttached             // Caller memory; never freed or reallocated
	ModeEmbedded             // Inline region reserved at creation
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeOwned:
		return "owned"
	case ModeAttached:
		return "attached"
	case ModeEmbedded:
		return "embedded"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// AttachType selects how AttachData derives the initial size.
type AttachType uint8

const (
	AttachZeroSize       AttachType = iota + 1 // Start empty
	AttachSizeTerminator                       // Size is the offset of the first 0 byte
)

// header holds the buffer bookkeeping. It contains no pointers so that
// NewAttached can place it inside caller memory.
type header struct {
	capacity  int
	size      int
	offset    int
	embedSize int
	mode      Mode
}

const (
	headerSize  = int(unsafe.Sizeof(header{}))
	headerAlign = uintptr(unsafe.Alignof(header{}))
)

// MaxHeaderRoom is the most region bytes NewAttached can consume.
const MaxHeaderRoom = headerSize + int(headerAlign) - 1

// StringBuffer is a growable byte string whose storage is owned, attached
// caller memory, or an inline region. data[Size()] is always 0 when
// Capacity() > 0.
//
// A StringBuffer is not safe for concurrent use. Views returned by Bytes and
// UnsafeString are invalidated by any call that may reserve.
type StringBuffer struct {
	hdr    *header
	own    header
	data   []byte // len(data) == capacity
	embed  []byte
	region []byte // keeps the NewAttached region reachable

	embedSize int
	alloc     Allocator
	tuning    search.Tuning
	poll      int
	obs       Observer
}

func newBuffer(opts []Option) *StringBuffer {
	b := &StringBuffer{
		embedSize: DefaultEmbedSize,
		alloc:     HeapAllocator{},
		tuning:    search.DefaultTuning,
		poll:      DefaultPollInterval,
		obs:       nopObserver{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// init allocates the inline region and resets the header.
func (b *StringBuffer) init(op string, h *header) error {
	if b.embedSize > 0 {
		embed, err := b.alloc.Alloc(b.embedSize)
		if err != nil {
			return &Error{Op: op, Kind: KindAllocation, Err: err}
		}
		b.embed = embed
	}
	*h = header{mode: ModeOwned, embedSize: b.embedSize}
	b.hdr = h
	return nil
}

// New creates an empty owned buffer. It fails if the activation gate is
// closed or the inline region cannot be allocated.
func New(opts ...Option) (*StringBuffer, error) {
	const op = "New"
	if !gate.Satisfied() {
		return nil, newError(op, KindState, ReasonGateNotSatisfied)
	}
	b := newBuffer(opts)
	if err := b.init(op, &b.own); err != nil {
		return nil, err
	}
	return b, nil
}

// NewAttached creates an empty buffer whose header lives at the start of
// region. It returns the number of region bytes consumed, alignment padding
// included. The remainder of region may be passed to AttachData.
func NewAttached(region []byte, opts ...Option) (*StringBuffer, int, error) {
	const op = "NewAttached"
	if !gate.Satisfied() {
		return nil, 0, newError(op, KindState, ReasonGateNotSatisfied)
	}
	if region == nil {
		return nil, 0, newError(op, KindInvalidArgument, ReasonNullItems)
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(region)))
	pad := int((headerAlign - addr%headerAlign) % headerAlign)
	used := pad + headerSize
	if len(region) < used {
		return nil, 0, newError(op, KindCapacity, ReasonInsufficient)
	}

	b := newBuffer(opts)
	b.region = region
	h := (*header)(unsafe.Pointer(&region[pad]))
	if err := b.init(op, h); err != nil {
		return nil, 0, err
	}
	return b, used, nil
}

func (b *StringBuffer) absent() bool {
	return b == nil || b.hdr == nil
}

func (b *StringBuffer) poller(sig cancel.Signal) cancel.Poller {
	return cancel.NewPoller(sig, b.poll)
}

// Destroy releases owned storage and the inline region. The buffer is
// absent afterwards; every method reports ErrAbsentContainer.
func (b *StringBuffer) Destroy() {
	if b.absent() {
		return
	}
	b.obs.Operation("Destroy", nil)
	if b.hdr.mode == ModeOwned && b.data != nil {
		b.alloc.Free(b.data)
	}
	if b.embed != nil {
		b.alloc.Free(b.embed)
	}
	*b.hdr = header{}
	b.hdr = nil
	b.data, b.embed, b.region = nil, nil, nil
}

// Clear empties the buffer without releasing storage.
func (b *StringBuffer) Clear() (err error) {
	const op = "Clear"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	b.setSize(0)
	return nil
}

// setSize updates the size and writes the terminator.
func (b *StringBuffer) setSize(n int) {
	b.hdr.size = n
	if b.hdr.capacity > 0 {
		b.data[n] = 0
	}
}

// AttachData binds the buffer to caller memory data[offset:capacity].
// Previously owned storage is released. The buffer never frees or
// reallocates attached memory.
func (b *StringBuffer) AttachData(data []byte, offset, capacity int, t AttachType) (err error) {
	const op = "AttachData"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	switch {
	case data == nil:
		return newError(op, KindInvalidArgument, ReasonNullItems)
	case offset < 0 || offset >= capacity:
		return newError(op, KindInvalidArgument, ReasonBadOffset)
	case capacity > len(data):
		return newError(op, KindRange, ReasonCountTooLarge)
	case t != AttachZeroSize && t != AttachSizeTerminator:
		return newError(op, KindInvalidArgument, ReasonBadAttachType)
	}

	view := data[offset:capacity:capacity]
	size := 0
	if t == AttachSizeTerminator {
		size = bytes.IndexByte(view, 0)
		if size < 0 {
			return newError(op, KindInvalidArgument, ReasonMissingTerminator)
		}
	}

	h := b.hdr
	if h.mode == ModeOwned && b.data != nil {
		b.alloc.Free(b.data)
	}
	b.data = view
	h.mode = ModeAttached
	h.capacity = len(view)
	h.offset = offset
	b.setSize(size)
	return nil
}

// Reserve grows the capacity to at least n. It is a no-op when the capacity
// already suffices. On failure the buffer is unchanged.
func (b *StringBuffer) Reserve(n int) (err error) {
	const op = "Reserve"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	return b.reserve(op, n)
}

func (b *StringBuffer) reserve(op string, n int) error {
	h := b.hdr
	if n <= h.capacity {
		return nil
	}
	if h.mode == ModeAttached {
		return newError(op, KindCapacity, ReasonAttachedCannotGrow)
	}

	from := h.capacity
	if from == 0 && h.mode == ModeOwned && n <= len(b.embed) {
		b.data = b.embed
		h.capacity = len(b.embed)
		h.mode = ModeEmbedded
		b.data[0] = 0
		b.obs.Grew(from, h.capacity, h.mode)
		return nil
	}

	target := max(n, 2*from)
	buf, err := b.alloc.Alloc(target)
	if err != nil && target > n {
		buf, err = b.alloc.Alloc(n)
	}
	if err != nil {
		return &Error{Op: op, Kind: KindAllocation, Err: err}
	}

	if from > 0 {
		copy(buf, b.data[:h.size+1])
		if h.mode == ModeOwned {
			b.alloc.Free(b.data)
		}
	} else {
		buf[0] = 0
	}
	b.data = buf
	h.capacity = len(buf)
	h.mode = ModeOwned
	b.obs.Grew(from, h.capacity, h.mode)
	return nil
}

// ReserveAndInit reserves n bytes and fills the first n-1 with fill.
// The buffer must be empty. A canceled fill keeps the completed prefix.
func (b *StringBuffer) ReserveAndInit(n int, fill byte, sig cancel.Signal) (err error) {
	const op = "ReserveAndInit"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	if b.hdr.size > 0 {
		return newError(op, KindState, ReasonNonEmptyForInit)
	}
	if n < 1 {
		return newError(op, KindInvalidArgument, ReasonZeroCount)
	}
	if err := b.reserve(op, n); err != nil {
		return err
	}

	p := b.poller(sig)
	total, done := n-1, 0
	for done < total && !p.Stopped() {
		end := min(done+p.Granularity(), total)
		fillBytes(b.data[done:end], fill)
		p.Step(end - done)
		done = end
	}
	p.Flush()
	b.setSize(done)
	if done < total {
		return canceled(op)
	}
	return nil
}

// fillBytes sets every byte of s to c by doubling copies.
func fillBytes(s []byte, c byte) {
	if len(s) == 0 {
		return
	}
	s[0] = c
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

// Resize sets the size to n within the current capacity.
func (b *StringBuffer) Resize(n int) (err error) {
	const op = "Resize"
	defer b.observe(op, &err)
	if b.absent() {
		return absent(op)
	}
	if n < 0 {
		return newError(op, KindInvalidArgument, ReasonBadOffset)
	}
	if n >= b.hdr.capacity {
		return newError(op, KindCapacity, ReasonInsufficient)
	}
	b.setSize(n)
	return nil
}

// Capacity returns the reserved byte count including the terminator slot,
// or -1 for an absent buffer.
func (b *StringBuffer) Capacity() int {
	if b.absent() {
		return -1
	}
	return b.hdr.capacity
}

// Size returns the content length, or -1 for an absent buffer.
func (b *StringBuffer) Size() int {
	if b.absent() {
		return -1
	}
	return b.hdr.size
}

// OffsetFromStart returns the offset into attached memory, or -1.
func (b *StringBuffer) OffsetFromStart() int {
	if b.absent() {
		return -1
	}
	return b.hdr.offset
}

// EmbedSize returns the inline region size, or -1.
func (b *StringBuffer) EmbedSize() int {
	if b.absent() {
		return -1
	}
	return b.hdr.embedSize
}

// Mode returns the storage mode. An absent buffer reports ModeOwned.
func (b *StringBuffer) Mode() Mode {
	if b.absent() {
		return ModeOwned
	}
	return b.hdr.mode
}

// IsAttached reports whether the storage is caller memory.
func (b *StringBuffer) IsAttached() bool {
	return !b.absent() && b.hdr.mode == ModeAttached
}

// Bytes returns the content. The slice aliases the buffer storage and its
// capacity is clipped so appends cannot overwrite the terminator.
func (b *StringBuffer) Bytes() []byte {
	if b.absent() || b.hdr.capacity == 0 {
		return nil
	}
	n := b.hdr.size
	return b.data[:n:n]
}

// String returns a copy of the content.
func (b *StringBuffer) String() string {
	return string(b.Bytes())
}

// UnsafeString returns the content without copying. The string must not be
// used after the next mutating call.
func (b *StringBuffer) UnsafeString() string {
	p := b.Bytes()
	if len(p) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(p), len(p))
}

// ByteAt returns the byte at i.
func (b *StringBuffer) ByteAt(i int) (byte, error) {
	const op = "ByteAt"
	if b.absent() {
		return 0, absent(op)
	}
	if i < 0 || i >= b.hdr.size {
		return 0, newError(op, KindRange, ReasonLeftBeyondSize)
	}
	return b.data[i], nil
}

// aliases reports whether s shares memory with the buffer storage.
func (b *StringBuffer) aliases(s []byte) bool {
	if len(s) == 0 || cap(b.data) == 0 {
		return false
	}
	d0 := uintptr(unsafe.Pointer(unsafe.SliceData(b.data)))
	d1 := d0 + uintptr(cap(b.data))
	s0 := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	s1 := s0 + uintptr(len(s))
	return s0 < d1 && d0 < s1
}

// detach returns s, or a copy of it when it aliases the buffer storage.
func (b *StringBuffer) detach(s []byte) []byte {
	if b.aliases(s) {
		return bytes.Clone(s)
	}
	return s
}
