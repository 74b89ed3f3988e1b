package fitsname

import (
	"errors"
	"fmt"
)

// Sentinel errors; every *Error wraps exactly one of them.
var (
	ErrUnbalancedBrackets = errors.New("unbalanced brackets")
	ErrMalformedSelector  = errors.New("malformed selector")
	ErrDuplicateSelector  = errors.New("duplicate selector")
	ErrOutOfOrderSelector = errors.New("selector out of order")
)

// Error describes why an extended filename was rejected.
type Error struct {
	Err    error  // One of the sentinel errors above.
	Input  string // The full input string.
	Pos    int    // Byte offset of Text in Input.
	Text   string // The offending substring.
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%q: %v at offset %d (%s): %s", e.Input, e.Err, e.Pos, e.Text, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(sentinel error, input string, pos int, text, reason string) *Error {
	return &Error{Err: sentinel, Input: input, Pos: pos, Text: text, Reason: reason}
}
