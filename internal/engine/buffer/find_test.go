package buffer

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/ansistr/internal/engine/cancel"
	"github.com/dshills/ansistr/internal/engine/search"
)

func TestFindSingle(t *testing.T) {
	b := newString(t, "abcdefgh")

	tests := []struct {
		left, right int
		c           byte
		want        int
		reason      Reason
	}{
		{0, 7, 'd', 3, ReasonNone},
		{4, 7, 'd', 8, ReasonNone},
		{0, End, 'h', 7, ReasonNone},
		{3, 3, 'd', 3, ReasonNone},
		{5, 2, 'd', 8, ReasonLeftAfterRight},
		{0, 8, 'd', 8, ReasonRightBeyondSize},
		{-1, 7, 'd', 8, ReasonBadOffset},
	}

	for _, tt := range tests {
		got, err := b.FindSingle(tt.left, tt.right, tt.c, nil)
		if got != tt.want {
			t.Errorf("FindSingle(%d, %d, %q) = %d, want %d", tt.left, tt.right, tt.c, got, tt.want)
		}
		if ReasonOf(err) != tt.reason {
			t.Errorf("FindSingle(%d, %d, %q) reason %v, want %v", tt.left, tt.right, tt.c, ReasonOf(err), tt.reason)
		}
		if err != nil && !IsBenign(err) {
			t.Errorf("expected benign error, got %v", err)
		}
	}
}

func TestRFindSingle(t *testing.T) {
	b := newString(t, "abcabc")

	if got, _ := b.RFindSingle(0, End, 'a', nil); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got, _ := b.RFindSingle(0, 2, 'a', nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got, _ := b.RFindSingle(1, 2, 'a', nil); got != 6 {
		t.Errorf("expected not found (6), got %d", got)
	}
}

func TestFind(t *testing.T) {
	b := newString(t, "abcdefgh")

	for _, m := range []search.Method{search.MethodAuto, search.MethodNaive, search.MethodSkipTable} {
		if got, err := b.Find(0, 7, []byte("abcd"), 4, m, nil); got != 0 || err != nil {
			t.Errorf("%v: Find(0, 7) = %d, %v; want 0", m, got, err)
		}
		if got, err := b.Find(1, 7, []byte("abcd"), 4, m, nil); got != 8 || err != nil {
			t.Errorf("%v: Find(1, 7) = %d, %v; want 8", m, got, err)
		}
		if got, _ := b.Find(0, 5, []byte("efgh"), 0, m, nil); got != 8 {
			t.Errorf("%v: match crossing the window edge must not be found, got %d", m, got)
		}
		if got, _ := b.RFind(0, End, []byte("fg"), 0, m, nil); got != 5 {
			t.Errorf("%v: RFind = %d, want 5", m, got)
		}
	}
}

func TestFindItemsConvention(t *testing.T) {
	b := newString(t, "abcdefgh")

	tests := []struct {
		name   string
		items  []byte
		count  int
		want   int
		reason Reason
	}{
		{"explicit count", []byte("cdXX"), 2, 2, ReasonNone},
		{"terminated", []byte("ef\x00zz"), 0, 4, ReasonNone},
		{"unterminated", []byte("gh"), 0, 6, ReasonNone},
		{"nil items", nil, 2, 8, ReasonNullItems},
		{"leading zero", []byte("\x00a"), 0, 8, ReasonZeroCount},
		{"count too large", []byte("ab"), 3, 8, ReasonCountTooLarge},
		{"negative count", []byte("ab"), -1, 8, ReasonZeroCount},
	}

	for _, tt := range tests {
		got, err := b.Find(0, End, tt.items, tt.count, search.MethodAuto, nil)
		if got != tt.want || ReasonOf(err) != tt.reason {
			t.Errorf("%s: got %d (%v), want %d (%v)", tt.name, got, ReasonOf(err), tt.want, tt.reason)
		}
	}

	if _, err := b.Find(0, End, []byte("ab"), 0, search.Method(9), nil); ReasonOf(err) != ReasonBadFindMethod {
		t.Errorf("expected BadFindMethod, got %v", err)
	}
}

func TestByteSetFinds(t *testing.T) {
	b := newString(t, "abcdefgh")

	tests := []struct {
		name string
		fn   func(int, int, []byte, int, cancel.Signal) (int, error)
		set  string
		want int
	}{
		{"FirstOf", b.FirstOf, "e@#", 4},
		{"FirstOf none", b.FirstOf, "xyz", 8},
		{"FirstNotOf", b.FirstNotOf, "cba#", 3},
		{"LastOf", b.LastOf, "ab", 1},
		{"LastNotOf", b.LastNotOf, "cba#", 7},
		{"LastNotOf all", b.LastNotOf, "abcdefgh", 8},
	}

	for _, tt := range tests {
		got, err := tt.fn(0, End, []byte(tt.set), 0, nil)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s(%q) = %d, want %d", tt.name, tt.set, got, tt.want)
		}
	}

	if got, _ := b.FirstNotOf(2, 5, []byte("cd"), 0, nil); got != 4 {
		t.Errorf("windowed FirstNotOf = %d, want 4", got)
	}
}

func TestCount(t *testing.T) {
	b := newString(t, "aaaa")

	if n, err := b.Count(0, 3, []byte("aa"), 0, search.MethodAuto, true, nil); n != 3 || err != nil {
		t.Errorf("overlapping count = %d, %v; want 3", n, err)
	}
	if n, err := b.Count(0, 3, []byte("aa"), 0, search.MethodAuto, false, nil); n != 2 || err != nil {
		t.Errorf("non-overlapping count = %d, %v; want 2", n, err)
	}
	if n, err := b.Count(0, 9, []byte("aa"), 0, search.MethodAuto, false, nil); n != 0 || !IsBenign(err) {
		t.Errorf("rejected window = %d, %v; want 0 with benign error", n, err)
	}
}

func TestCompare(t *testing.T) {
	b := newString(t, "abcdefgh")

	tests := []struct {
		pos    int
		items  string
		want   bool
		reason Reason
	}{
		{0, "abc", true, ReasonNone},
		{2, "cdefgh", true, ReasonNone},
		{2, "cdx", false, ReasonNone},
		{6, "ghi", false, ReasonNone},
		{8, "a", false, ReasonLeftBeyondSize},
	}

	for _, tt := range tests {
		got, err := b.Compare(tt.pos, []byte(tt.items), 0, nil)
		if got != tt.want || ReasonOf(err) != tt.reason {
			t.Errorf("Compare(%d, %q) = %v (%v), want %v (%v)", tt.pos, tt.items, got, ReasonOf(err), tt.want, tt.reason)
		}
	}
}

func TestFindCanceled(t *testing.T) {
	b := newString(t, strings.Repeat("ab", 1<<18), WithPollInterval(256))
	tok := cancel.New()
	tok.Cancel()

	pos, err := b.Find(0, End, []byte("zzzzzz"), 0, search.MethodSkipTable, tok)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if pos != b.Size() {
		t.Errorf("expected Size on cancel, got %d", pos)
	}
	if tok.Progress() == 0 || tok.Progress() > 1024 {
		t.Errorf("expected progress bounded by the poll interval, got %d", tok.Progress())
	}
}

func TestCountCanceledReturnsPartial(t *testing.T) {
	const n = 1 << 19
	b := newString(t, strings.Repeat("ab", n))

	sig := &cancelAfter{limit: 100000}
	got, err := b.Count(0, End, []byte("ab"), 0, search.MethodAuto, false, sig)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if got == 0 || got >= n {
		t.Errorf("expected a partial count, got %d of %d", got, n)
	}
	if uint64(got) > sig.progress+uint64(DefaultPollInterval) {
		t.Errorf("counted %d matches after %d steps", got, sig.progress)
	}
}
