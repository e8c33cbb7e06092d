package core

import "errors"

// Errors
var (
	// ErrInvalidArgument is the class of every rejected input. Field specific
	// errors below wrap it so callers can test with errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation signals that the engine reached a state that should
	// be unreachable. It never wraps ErrInvalidArgument.
	ErrInvariantViolation = errors.New("internal invariant violation")

	ErrInvalidQuantity  = wrapInvalid("invalid quantity")
	ErrInvalidRemaining = wrapInvalid("invalid remaining quantity")
	ErrInvalidPrice     = wrapInvalid("invalid price")
	ErrSymbolMismatch   = wrapInvalid("symbol mismatch")
	ErrInvalidSymbol    = wrapInvalid("invalid symbol")
	ErrInvalidSide      = wrapInvalid("invalid side")
	ErrInvalidTif       = wrapInvalid("invalid TIF")
	ErrInvalidDepth     = wrapInvalid("invalid depth")
	ErrInvalidLimit     = wrapInvalid("invalid limit")
)

const (
	// DefaultTradeHistoryCapacity is the number of trades a book retains.
	DefaultTradeHistoryCapacity = 10000

	// DefaultTradesLimit is used by adapters when the caller omits a limit.
	DefaultTradesLimit = 50

	// FullDepth requests every price level in a snapshot.
	FullDepth = int(^uint(0) >> 1)
)

type argumentError struct {
	msg string
}

func (e *argumentError) Error() string { return e.msg }

func (e *argumentError) Unwrap() error { return ErrInvalidArgument }

func wrapInvalid(msg string) error {
	return &argumentError{msg: msg}
}
