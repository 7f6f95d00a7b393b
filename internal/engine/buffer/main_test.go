package buffer

import (
	"os"
	"testing"

	"github.com/dshills/ansistr/internal/gate"
)

func TestMain(m *testing.M) {
	if err := gate.Init(gate.Sign("Test", "Runner", "test@example.com")); err != nil {
		panic(err)
	}
	code := m.Run()
	gate.Uninit()
	os.Exit(code)
}

// tester is the part of testing.TB and *rapid.T the helpers need.
type tester interface {
	Helper()
	Fatalf(format string, args ...any)
}

// newString creates an owned buffer holding s.
func newString(t tester, s string, opts ...Option) *StringBuffer {
	t.Helper()
	b, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s != "" {
		if err := b.Insert(End, []byte(s), len(s), true, nil); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	return b
}

// checkInvariants verifies the size and terminator invariants.
func checkInvariants(t tester, b *StringBuffer) {
	t.Helper()
	c, n := b.Capacity(), b.Size()
	if c == 0 {
		if n != 0 {
			t.Fatalf("size %d with zero capacity", n)
		}
		return
	}
	if n > c-1 {
		t.Fatalf("size %d exceeds capacity-1 (%d)", n, c-1)
	}
	if len(b.data) != c {
		t.Fatalf("storage length %d, capacity %d", len(b.data), c)
	}
	if b.data[n] != 0 {
		t.Fatalf("missing terminator at %d", n)
	}
}

// cancelAfter cancels once limit steps have been reported.
type cancelAfter struct {
	limit    uint64
	progress uint64
	polls    int
}

func (c *cancelAfter) Canceled() bool {
	c.polls++
	return c.progress >= c.limit
}

func (c *cancelAfter) Advance(n uint64) {
	c.progress += n
}
