// Package cancel provides the cooperative cancellation protocol used by
// long-running buffer scans and mutations.
//
// The engine never starts goroutines. A caller that wants to abort an
// operation runs it on its own goroutine and, from elsewhere, calls Cancel on
// the shared Token. The engine polls the token at a bounded granularity and
// returns early once the flag is observed.
//
// Basic usage:
//
//	tok := cancel.New()
//	go func() {
//	    time.Sleep(50 * time.Millisecond)
//	    tok.Cancel()
//	}()
//	err := buf.Remove(0, buffer.End, []byte("needle"), 0, tok)
//	// errors.Is(err, buffer.ErrCanceled) if the flag was seen in time
//
// Progress:
//
// The token's progress counter is advanced by the engine with the number of
// bytes examined or moved, in steps no larger than the poll granularity. It is
// safe to read from any goroutine.
//
// Passing a nil Signal to any engine entry point disables polling entirely.
package cancel
