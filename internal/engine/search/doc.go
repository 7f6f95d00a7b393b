// Package search implements the byte-level search algorithms used by the
// string buffer: single-byte scans, multi-byte pattern scans in both
// directions, and byte-set membership scans.
//
// Every function operates on a window slice and returns an index relative to
// that slice, or -1 when nothing qualifies. Long scans consult a
// *cancel.Poller and return cancel.ErrCanceled when an abort was requested.
//
// Pattern search methods:
//
//   - MethodNaive: compare at every alignment
//   - MethodSkipTable: Boyer-Moore-Horspool with a bad-character table
//     (mirrored for backward scans)
//   - MethodAuto: choose per call from the pattern length and window size
//
// Both concrete methods report identical positions for every input. The
// automatic choice is a tuning decision only.
//
// Basic usage:
//
//	f := search.NewFinder([]byte("needle"), search.MethodAuto, len(hay), search.DefaultTuning)
//	defer f.Release()
//	pos, err := f.Index(hay, nil)
package search
