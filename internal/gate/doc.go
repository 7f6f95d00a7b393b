// Package gate implements the process-wide activation gate that must be
// satisfied before any string buffer can be constructed.
//
// Activation takes a License: a name and email together with a 32-bit key
// derived from them. Sign produces valid material; Init verifies it and
// opens the gate for the rest of the process, or until Uninit.
//
// Basic usage:
//
//	if err := gate.Init(gate.Sign("Ada", "Lovelace", "ada@example.com")); err != nil {
//	    log.Fatal(err)
//	}
//	defer gate.Uninit()
//
// InitAttached does the same but also writes a fixed-size state record into
// caller-supplied memory and reports how many bytes it used, so callers that
// manage their own arenas can account for it. The record is cleared on Uninit.
//
// The gate is safe for concurrent use.
package gate
