package search

import "fmt"

// Method selects the multi-byte pattern search algorithm.
type Method uint8

const (
	MethodAuto      Method = iota // Pick per call
	MethodNaive                   // Compare at every alignment
	MethodSkipTable               // Boyer-Moore-Horspool
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodNaive:
		return "naive"
	case MethodSkipTable:
		return "skip"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m <= MethodSkipTable
}

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "auto":
		return MethodAuto, nil
	case "naive":
		return MethodNaive, nil
	case "skip", "skiptable", "horspool":
		return MethodSkipTable, nil
	default:
		return MethodAuto, fmt.Errorf("unknown search method %q", s)
	}
}

// Default tuning thresholds for MethodAuto.
const (
	DefaultMinPattern = 4
	DefaultMinWindow  = 256
)

// Tuning holds the thresholds MethodAuto uses to choose the skip table.
type Tuning struct {
	MinPattern int // Minimum pattern length for the skip table
	MinWindow  int // Minimum window length for the skip table
}

// DefaultTuning is used when no tuning is configured.
var DefaultTuning = Tuning{MinPattern: DefaultMinPattern, MinWindow: DefaultMinWindow}

// Select resolves m for a pattern of patLen bytes over a window of window bytes.
// Concrete methods are returned unchanged.
func (t Tuning) Select(m Method, patLen, window int) Method {
	if m != MethodAuto {
		return m
	}
	if t.MinPattern <= 0 {
		t.MinPattern = DefaultMinPattern
	}
	if t.MinWindow <= 0 {
		t.MinWindow = DefaultMinWindow
	}
	if patLen >= t.MinPattern && window >= t.MinWindow {
		return MethodSkipTable
	}
	return MethodNaive
}
