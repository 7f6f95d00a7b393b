package buffer

import (
	"github.com/dshills/ansistr/internal/engine/cancel"
	"github.com/dshills/ansistr/internal/engine/search"
)

// Default configuration values.
const (
	DefaultEmbedSize    = 0
	DefaultPollInterval = cancel.DefaultGranularity
)

// Option is a functional option for configuring a StringBuffer.
type Option func(*StringBuffer)

// WithEmbedSize reserves an inline region of n bytes at creation. The first
// reservation that fits uses it instead of the allocator.
func WithEmbedSize(n int) Option {
	return func(b *StringBuffer) {
		if n > 0 {
			b.embedSize = n
		}
	}
}

// WithAllocator sets the allocator used for owned storage.
func WithAllocator(a Allocator) Option {
	return func(b *StringBuffer) {
		if a != nil {
			b.alloc = a
		}
	}
}

// WithTuning sets the thresholds used by search.MethodAuto.
func WithTuning(t search.Tuning) Option {
	return func(b *StringBuffer) {
		b.tuning = t
	}
}

// WithPollInterval sets how many bytes are processed between two
// cancellation polls.
func WithPollInterval(n int) Option {
	return func(b *StringBuffer) {
		if n > 0 {
			b.poll = n
		}
	}
}

// WithObserver attaches an event observer.
func WithObserver(o Observer) Option {
	return func(b *StringBuffer) {
		if o != nil {
			b.obs = o
		}
	}
}
