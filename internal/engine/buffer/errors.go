package buffer

import (
	"errors"
	"fmt"

	"github.com/dshills/ansistr/internal/engine/cancel"
)

// Kind classifies a failed or declined operation.
type Kind uint8

const (
	KindAbsentContainer Kind = iota + 1 // Receiver is nil or destroyed
	KindInvalidArgument                 // Bad argument, buffer unmodified
	KindRange                           // Window or position outside the content
	KindCapacity                        // Not enough room and growth not possible
	KindAllocation                      // Allocator failed
	KindState                           // Operation not legal in the current state
	KindCanceled                        // Cancellation observed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAbsentContainer:
		return "absent container"
	case KindInvalidArgument:
		return "invalid argument"
	case KindRange:
		return "range violation"
	case KindCapacity:
		return "capacity violation"
	case KindAllocation:
		return "allocation failure"
	case KindState:
		return "state violation"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Reason refines a Kind.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNullItems
	ReasonZeroCount
	ReasonBadOffset
	ReasonBadAttachType
	ReasonBadFindMethod
	ReasonMissingTerminator
	ReasonLeftAfterRight
	ReasonRightBeyondSize
	ReasonCountTooLarge
	ReasonLeftPlusCountBeyondSize
	ReasonLeftBeyondSize
	ReasonInsufficient
	ReasonAttachedCannotGrow
	ReasonNonEmptyForInit
	ReasonGateNotSatisfied
	ReasonEmpty
	ReasonNothingTrimmed
	ReasonSubContainer
)

var reasonNames = [...]string{
	ReasonNone:                    "",
	ReasonNullItems:               "null items",
	ReasonZeroCount:               "zero count",
	ReasonBadOffset:               "bad offset",
	ReasonBadAttachType:           "bad attach type",
	ReasonBadFindMethod:           "bad find method",
	ReasonMissingTerminator:       "missing terminator",
	ReasonLeftAfterRight:          "left after right",
	ReasonRightBeyondSize:         "right beyond size",
	ReasonCountTooLarge:           "count too large",
	ReasonLeftPlusCountBeyondSize: "left plus count beyond size",
	ReasonLeftBeyondSize:          "left beyond size",
	ReasonInsufficient:            "insufficient capacity",
	ReasonAttachedCannotGrow:      "attached buffer cannot grow",
	ReasonNonEmptyForInit:         "buffer not empty",
	ReasonGateNotSatisfied:        "gate not satisfied",
	ReasonEmpty:                   "buffer empty",
	ReasonNothingTrimmed:          "nothing trimmed",
	ReasonSubContainer:            "destination container",
}

// String returns the reason text.
func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// Sentinel errors, one per Kind. Every *Error unwraps to the sentinel of its kind.
var (
	ErrAbsentContainer = errors.New("absent container")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRange           = errors.New("range violation")
	ErrCapacity        = errors.New("capacity violation")
	ErrAllocation      = errors.New("allocation failure")
	ErrState           = errors.New("state violation")
	ErrCanceled        = cancel.ErrCanceled
)

func (k Kind) sentinel() error {
	switch k {
	case KindAbsentContainer:
		return ErrAbsentContainer
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindRange:
		return ErrRange
	case KindCapacity:
		return ErrCapacity
	case KindAllocation:
		return ErrAllocation
	case KindState:
		return ErrState
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// Error is the status returned by buffer operations.
type Error struct {
	Op     string // Operation name, e.g. "Insert"
	Kind   Kind
	Reason Reason
	Err    error // Underlying cause, if any
}

func (e *Error) Error() string {
	msg := "buffer: " + e.Op + ": " + e.Kind.String()
	if e.Reason != ReasonNone {
		msg += ": " + e.Reason.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(op string, k Kind, r Reason) *Error {
	return &Error{Op: op, Kind: k, Reason: r}
}

func absent(op string) *Error {
	return newError(op, KindAbsentContainer, ReasonNone)
}

func canceled(op string) *Error {
	return newError(op, KindCanceled, ReasonNone)
}

// IsBenign reports whether err describes a declined no-op: the buffer was
// left unmodified because an argument or window was out of bounds, or there
// was nothing to do.
func IsBenign(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindInvalidArgument, KindRange:
		return true
	case KindState:
		return e.Reason == ReasonEmpty || e.Reason == ReasonNothingTrimmed
	default:
		return false
	}
}

// ReasonOf returns the reason carried by err, or ReasonNone.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}
