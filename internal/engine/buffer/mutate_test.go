package buffer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/ansistr/internal/engine/cancel"
)

func TestInsert(t *testing.T) {
	tests := []struct {
		name  string
		start string
		pos   int
		items string
		want  string
	}{
		{"append", "Hello", End, " World", "Hello World"},
		{"append at size", "Hello", 5, "!", "Hello!"},
		{"prepend", "World", 0, "Hello ", "Hello World"},
		{"middle", "Hello World", 5, ",", "Hello, World"},
		{"into empty", "", 0, "abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, tt.start)
			if err := b.Insert(tt.pos, []byte(tt.items), 0, true, nil); err != nil {
				t.Fatalf("insert failed: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.String())
			}
			checkInvariants(t, b)
		})
	}
}

func TestInsertErrors(t *testing.T) {
	b := newString(t, "abc")
	b.Reserve(8)

	err := b.Insert(4, []byte("x"), 0, true, nil)
	if !errors.Is(err, ErrRange) || ReasonOf(err) != ReasonLeftBeyondSize {
		t.Errorf("expected LeftBeyondSize, got %v", err)
	}

	err = b.Insert(0, []byte("too long"), 0, false, nil)
	if !errors.Is(err, ErrCapacity) || ReasonOf(err) != ReasonInsufficient {
		t.Errorf("expected Insufficient, got %v", err)
	}
	if IsBenign(err) {
		t.Error("capacity violation is not benign")
	}
	if b.String() != "abc" || b.Capacity() != 8 {
		t.Errorf("failed insert modified the buffer: %q cap %d", b.String(), b.Capacity())
	}
}

func TestInsertAllocationFailureIsAtomic(t *testing.T) {
	b := newString(t, "abc", WithAllocator(HeapAllocator{Limit: 16}))
	err := b.Insert(1, []byte(strings.Repeat("x", 32)), 0, true, nil)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if b.String() != "abc" {
		t.Errorf("expected unchanged content, got %q", b.String())
	}
	checkInvariants(t, b)
}

func TestInsertSelfAliasing(t *testing.T) {
	b := newString(t, "abcdef")

	// Growth frees the storage the source points into.
	if err := b.Insert(0, b.Bytes(), 0, true, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "abcdefabcdef" {
		t.Errorf("expected doubled content, got %q", b.String())
	}

	b.Reserve(64)
	if err := b.Insert(2, b.Bytes()[4:8], 4, false, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "abefabcdefabcdef" {
		t.Errorf("unexpected content %q", b.String())
	}
	checkInvariants(t, b)
}

func TestRemoveFrom(t *testing.T) {
	b := newString(t, "Hello, World")
	c := b.Capacity()

	if err := b.RemoveFrom(5, 1, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "Hello World" {
		t.Errorf("expected 'Hello World', got %q", b.String())
	}
	if b.Capacity() != c {
		t.Error("capacity changed")
	}

	err := b.RemoveFrom(8, 4, nil)
	if ReasonOf(err) != ReasonLeftPlusCountBeyondSize || !IsBenign(err) {
		t.Errorf("expected benign LeftPlusCountBeyondSize, got %v", err)
	}
	if b.String() != "Hello World" {
		t.Error("rejected remove modified the buffer")
	}
	checkInvariants(t, b)
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name        string
		start       string
		left, right int
		pat         string
		want        string
	}{
		{"all", "a-b-c-d", 0, End, "-", "abcd"},
		{"multi byte", "xxabxxabxx", 0, End, "xx", "abab"},
		{"window", "--a--b--", 2, 5, "-", "--ab--"},
		{"match past window", "ab-ab", 0, 3, "ab", "-ab"},
		{"no match", "abc", 0, End, "z", "abc"},
		{"overlapping candidates", "aaaaa", 0, End, "aa", "a"},
		{"everything", "abab", 0, End, "ab", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, tt.start)
			if err := b.Remove(tt.left, tt.right, []byte(tt.pat), 0, nil); err != nil {
				t.Fatalf("remove failed: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.String())
			}
			checkInvariants(t, b)
		})
	}
}

func TestRemoveCanceled(t *testing.T) {
	const unit = "abc."
	const n = 1 << 19
	orig := []byte(strings.Repeat(unit, n))
	b := newString(t, string(orig))
	c := b.Capacity()

	sig := &cancelAfter{limit: 200000}
	err := b.Remove(0, End, []byte("abc"), 0, sig)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if sig.progress > sig.limit+uint64(DefaultPollInterval) {
		t.Errorf("operation ran %d steps past the request", sig.progress-sig.limit)
	}

	k := len(orig) - b.Size()
	if k%3 != 0 {
		t.Fatalf("removed %d bytes, not a whole number of matches", k)
	}
	k /= 3
	if k == 0 || k == n {
		t.Fatalf("expected a partial removal, got %d of %d", k, n)
	}

	got := b.Bytes()
	if !bytes.Equal(got[:k], bytes.Repeat([]byte("."), k)) {
		t.Error("completed prefix is wrong")
	}
	if !bytes.Equal(got[k:], orig[4*k:]) {
		t.Error("bytes beyond the completed prefix were altered")
	}
	if b.Capacity() != c {
		t.Error("capacity changed")
	}
	checkInvariants(t, b)
}

func TestCanceledBeforeMoving(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b, dst *StringBuffer, sig cancel.Signal) error
	}{
		{"insert", func(b, _ *StringBuffer, sig cancel.Signal) error {
			return b.Insert(2, []byte(strings.Repeat("x", 100)), 0, true, sig)
		}},
		{"remove from", func(b, _ *StringBuffer, sig cancel.Signal) error {
			return b.RemoveFrom(1, 3, sig)
		}},
		{"copy from", func(b, dst *StringBuffer, sig cancel.Signal) error {
			_, err := b.CopySubBufferFrom(0, 3, dst, sig)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, "abcdef")
			dst := newString(t, "old")
			c := b.Capacity()

			sig := &cancelAfter{}
			if err := tt.fn(b, dst, sig); !errors.Is(err, ErrCanceled) {
				t.Fatalf("expected ErrCanceled, got %v", err)
			}
			if sig.polls != 1 {
				t.Errorf("expected one poll, got %d", sig.polls)
			}
			if b.String() != "abcdef" || b.Capacity() != c {
				t.Errorf("buffer changed: %q capacity %d", b.String(), b.Capacity())
			}
			if dst.String() != "old" {
				t.Errorf("destination changed: %q", dst.String())
			}
			checkInvariants(t, b)
		})
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name          string
		start         string
		before, after string
		want          string
	}{
		{"same length", "a-b-c", "-", "+", "a+b+c"},
		{"shrink", "a--b--c", "--", "=", "a=b=c"},
		{"grow", "a-b-c", "-", "<->", "a<->b<->c"},
		{"grow at edges", "-ab-", "-", "==", "==ab=="},
		{"delete", "a-b-c", "-", "", "abc"},
		{"no match", "abc", "z", "zz", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, tt.start)
			if err := b.Replace(0, End, []byte(tt.before), 0, []byte(tt.after), 0, true, nil); err != nil {
				t.Fatalf("replace failed: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.String())
			}
			checkInvariants(t, b)
		})
	}
}

func TestReplaceWindow(t *testing.T) {
	b := newString(t, "x-x-x-x")
	if err := b.Replace(2, 4, []byte("x"), 0, []byte("yy"), 0, true, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "x-yy-yy-x" {
		t.Errorf("unexpected content %q", b.String())
	}
}

func TestReplaceGrowIsAtomic(t *testing.T) {
	b := newString(t, "a-b-c-d", WithAllocator(HeapAllocator{Limit: 10}))
	if err := b.Reserve(10); err != nil || b.Capacity() != 10 {
		t.Fatalf("setup: capacity %d, %v", b.Capacity(), err)
	}

	err := b.Replace(0, End, []byte("-"), 0, []byte("---"), 0, false, nil)
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if b.String() != "a-b-c-d" {
		t.Errorf("partial replacement: %q", b.String())
	}

	err = b.Replace(0, End, []byte("-"), 0, []byte("---"), 0, true, nil)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if b.String() != "a-b-c-d" || b.Capacity() != 10 {
		t.Errorf("failed replacement changed the buffer: %q cap %d", b.String(), b.Capacity())
	}
	checkInvariants(t, b)
}

func TestReplaceGrowCanceledLeavesBufferUnchanged(t *testing.T) {
	b := newString(t, strings.Repeat("ab", 1<<16), WithPollInterval(64))
	tok := cancel.New()
	tok.Cancel()

	err := b.Replace(0, End, []byte("ab"), 0, []byte("abc"), 0, true, tok)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if n, _ := b.Count(0, End, []byte("abc"), 0, 0, false, nil); b.Size() != 1<<17 || n != 0 {
		t.Error("canceled growing replace modified the buffer")
	}
}

func TestReplaceShrinkCanceled(t *testing.T) {
	tests := []struct {
		name string
		repl string
	}{
		{"shrinking", "Z"},
		{"equal length", "WXYZ"},
		{"removing", ""},
	}

	const n = 1 << 19
	orig := []byte(strings.Repeat("abcd.", n))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, string(orig))
			c := b.Capacity()

			sig := &cancelAfter{limit: 100000}
			err := b.Replace(0, End, []byte("abcd"), 0, []byte(tt.repl), len(tt.repl), false, sig)
			if !errors.Is(err, ErrCanceled) {
				t.Fatalf("expected ErrCanceled, got %v", err)
			}

			// The first k matches are replaced and the rest is untouched.
			unit := []byte(tt.repl + ".")
			got := b.Bytes()
			k := 0
			for bytes.HasPrefix(got[k*len(unit):], unit) {
				k++
			}
			if k == 0 || k == n {
				t.Fatalf("expected a partial replacement, got %d of %d", k, n)
			}
			if !bytes.Equal(got[k*len(unit):], orig[5*k:]) {
				t.Error("bytes beyond the completed prefix were altered")
			}
			if b.Capacity() != c {
				t.Error("capacity changed")
			}
			checkInvariants(t, b)
		})
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		fn     string
		set    string
		want   string
		reason Reason
	}{
		{"left", "  abc  ", "left", " ", "abc  ", ReasonNone},
		{"right", "  abc  ", "right", " ", "  abc", ReasonNone},
		{"both", "#@abc@#", "both", "#@", "abc", ReasonNone},
		{"nothing", "abc", "both", " ", "abc", ReasonNothingTrimmed},
		{"everything", "    ", "both", " ", "", ReasonNone},
		{"empty", "", "both", " ", "", ReasonEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, tt.start)
			var err error
			switch tt.fn {
			case "left":
				err = b.TrimLeft(0, End, []byte(tt.set), 0, nil)
			case "right":
				err = b.TrimRight(0, End, []byte(tt.set), 0, nil)
			default:
				err = b.Trim(0, End, []byte(tt.set), 0, nil)
			}
			if ReasonOf(err) != tt.reason {
				t.Fatalf("expected reason %v, got %v", tt.reason, err)
			}
			if err != nil && !IsBenign(err) {
				t.Errorf("expected benign outcome, got %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, b.String())
			}
			checkInvariants(t, b)
		})
	}
}

func TestTrimWindow(t *testing.T) {
	b := newString(t, "[  x  ]")
	if err := b.Trim(1, 5, []byte(" "), 0, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != "[x]" {
		t.Errorf("expected [x], got %q", b.String())
	}
}

func TestTrimIdempotent(t *testing.T) {
	b := newString(t, "..abc..")
	b.Trim(0, End, []byte("."), 0, nil)
	once := b.String()

	err := b.Trim(0, End, []byte("."), 0, nil)
	if ReasonOf(err) != ReasonNothingTrimmed {
		t.Errorf("expected NothingTrimmed, got %v", err)
	}
	if b.String() != once {
		t.Errorf("second trim changed %q to %q", once, b.String())
	}
}

func TestTrimCanceledBetweenPasses(t *testing.T) {
	lead := strings.Repeat(" ", 1<<18)
	b := newString(t, lead+"x  ")

	// The trailing pass is shorter than one poll interval; the first
	// poll happens in the leading pass.
	sig := &cancelAfter{limit: 1}
	err := b.Trim(0, End, []byte(" "), 0, sig)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if b.String() != lead+"x" {
		t.Errorf("expected only the trailing run removed, got size %d", b.Size())
	}
	checkInvariants(t, b)
}

func TestCopySubBuffer(t *testing.T) {
	b := newString(t, "key=value;next=1")
	dst := newString(t, "stale content")

	next, err := b.CopySubBuffer(0, End, []byte("=;"), 0, dst, nil)
	if err != nil {
		t.Fatal(err)
	}
	if next != 4 || dst.String() != "key" {
		t.Errorf("got %d %q, want 4 \"key\"", next, dst.String())
	}

	next, _ = b.CopySubBuffer(next, End, []byte(";"), 0, dst, nil)
	if next != 10 || dst.String() != "value" {
		t.Errorf("got %d %q, want 10 \"value\"", next, dst.String())
	}

	next, _ = b.CopySubBuffer(next, End, []byte(";"), 0, dst, nil)
	if next != b.Size() || dst.String() != "next=1" {
		t.Errorf("got %d %q, want %d \"next=1\"", next, dst.String(), b.Size())
	}

	next, err = b.CopySubBuffer(0, End, []byte(";"), 0, nil, nil)
	if next != -1 || !errors.Is(err, ErrAbsentContainer) || ReasonOf(err) != ReasonSubContainer {
		t.Errorf("nil destination: got %d, %v", next, err)
	}
}

func TestCopySubBufferFrom(t *testing.T) {
	b := newString(t, "abcdefgh")
	dst := newString(t, "")

	next, err := b.CopySubBufferFrom(2, 3, dst, nil)
	if err != nil || next != 5 || dst.String() != "cde" {
		t.Errorf("got %d %q %v", next, dst.String(), err)
	}

	next, err = b.CopySubBufferFrom(6, 3, dst, nil)
	if ReasonOf(err) != ReasonLeftPlusCountBeyondSize || next != 8 {
		t.Errorf("expected benign range error, got %d %v", next, err)
	}
	if dst.String() != "cde" {
		t.Error("rejected copy modified the destination")
	}
}

func TestCopyDestinationCannotGrow(t *testing.T) {
	limited := func(t *testing.T) *StringBuffer {
		return newString(t, "", WithAllocator(HeapAllocator{Limit: 4}))
	}
	attached := func(t *testing.T) *StringBuffer {
		dst := newString(t, "")
		if err := dst.AttachData(make([]byte, 4), 0, 4, AttachZeroSize); err != nil {
			t.Fatal(err)
		}
		return dst
	}

	tests := []struct {
		name   string
		dst    func(t *testing.T) *StringBuffer
		want   error
		reason Reason
	}{
		{"allocation failure", limited, ErrAllocation, ReasonNone},
		{"attached", attached, ErrCapacity, ReasonAttachedCannotGrow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newString(t, "abcdefgh")

			dst := tt.dst(t)
			next, err := b.CopySubBuffer(0, End, []byte(","), 1, dst, nil)
			if next != -1 || !errors.Is(err, tt.want) || IsBenign(err) {
				t.Errorf("CopySubBuffer: got %d, %v", next, err)
			}
			if ReasonOf(err) != tt.reason {
				t.Errorf("expected %v, got %v", tt.reason, ReasonOf(err))
			}
			if dst.Size() != 0 {
				t.Errorf("destination changed: %q", dst.String())
			}

			next, err = b.CopySubBufferFrom(0, 8, dst, nil)
			if next != -1 || !errors.Is(err, tt.want) {
				t.Errorf("CopySubBufferFrom: got %d, %v", next, err)
			}
			if b.String() != "abcdefgh" {
				t.Errorf("source changed: %q", b.String())
			}
		})
	}
}

func TestCopySubBufferIntoItself(t *testing.T) {
	b := newString(t, "hello,world")

	// The position refers to the content before the copy.
	next, err := b.CopySubBuffer(0, End, []byte(","), 1, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if next != 6 || b.String() != "hello" {
		t.Errorf("got %d %q, want 6 \"hello\"", next, b.String())
	}
	checkInvariants(t, b)
}

func TestCopyInsertRoundTrip(t *testing.T) {
	const text = "the quick brown fox"
	b := newString(t, text)
	dst := newString(t, "")

	next, err := b.CopySubBufferFrom(4, 6, dst, nil)
	if err != nil {
		t.Fatal(err)
	}
	b.RemoveFrom(4, next-4, nil)
	if err := b.Insert(4, dst.Bytes(), dst.Size(), true, nil); err != nil {
		t.Fatal(err)
	}
	if b.String() != text {
		t.Errorf("round trip produced %q", b.String())
	}
}
