package cancel

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultGranularity is the default number of steps between two polls.
const DefaultGranularity = 4096

// ErrCanceled is returned by engine operations that observed a cancellation request.
var ErrCanceled = errors.New("operation canceled")

// Signal is the capability the engine consumes: a polled predicate and a
// progress sink.
type Signal interface {
	// Canceled reports whether an abort was requested.
	Canceled() bool
	// Advance adds n to the progress counter.
	Advance(n uint64)
}

// Token is a caller-owned cancellation flag with a progress counter.
// The zero value is not usable; use New.
type Token struct {
	id       uuid.UUID
	canceled atomic.Bool
	progress atomic.Uint64
}

// New creates a token with a fresh ID.
func New() *Token {
	return &Token{id: uuid.New()}
}

// WithContext creates a token that is canceled when ctx is done.
// The returned stop function detaches the token from ctx.
func WithContext(ctx context.Context) (*Token, func() bool) {
	t := New()
	stop := context.AfterFunc(ctx, t.Cancel)
	return t, stop
}

// ID returns the token's identifier.
func (t *Token) ID() uuid.UUID {
	return t.id
}

// Cancel requests cancellation. Calling it more than once has no further effect.
func (t *Token) Cancel() {
	t.canceled.Store(true)
}

// Canceled implements Signal.
func (t *Token) Canceled() bool {
	return t.canceled.Load()
}

// Advance implements Signal.
func (t *Token) Advance(n uint64) {
	t.progress.Add(n)
}

// Progress returns the number of steps reported so far.
func (t *Token) Progress() uint64 {
	return t.progress.Load()
}
