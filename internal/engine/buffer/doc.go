// Package buffer provides StringBuffer, a byte string container with
// explicit control over where its storage lives.
//
// The package provides:
//
//   - Owned storage obtained from a pluggable Allocator (heap or pooled)
//   - Attached storage: caller memory used in place and never reallocated
//   - Embedded storage: an inline region reserved at creation for small strings
//   - Windowed single-byte, pattern and byte-set search, forward and backward
//   - Insert, remove, trim, replace, count and sub-buffer copies
//   - Cooperative cancellation through cancel.Signal
//
// Basic usage:
//
//	buf, err := buffer.New(buffer.WithEmbedSize(64))
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	buf.Insert(buffer.End, []byte("abcdefgh"), 0, true, nil)
//	pos, _ := buf.Find(0, buffer.End, []byte("cd"), 0, search.MethodAuto, nil) // 2
//
// Windows:
//
// Search and pattern mutations take an inclusive window [left, right].
// Passing End as right selects the last byte. A window that does not fit the
// content is declined rather than failed: the call returns Size() for
// positions together with a benign *Error (see IsBenign).
//
// Items:
//
// Patterns and byte sets are passed as (items, count). A positive count uses
// exactly that many bytes; zero uses items up to its first 0 byte.
//
// Status:
//
// Every operation reports an *Error carrying Kind and Reason. errors.Is
// matches the Kind sentinels (ErrRange, ErrCapacity, ...). An absent buffer,
// nil or destroyed, returns -1 for positions and sizes with
// ErrAbsentContainer.
//
// Cancellation:
//
// Long operations take a cancel.Signal, polled every WithPollInterval bytes.
// A nil Signal runs to completion without polling. A canceled mutation
// leaves size, capacity and terminator consistent with the work completed.
//
// Thread Safety:
//
// A StringBuffer has no internal locking and must not be mutated
// concurrently. Only reservations replace storage; views from Bytes and
// UnsafeString do not survive them.
package buffer
