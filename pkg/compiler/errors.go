package compiler

import (
	"errors"
	"fmt"
)

// Failure kinds. A compilation stops at the first of these it hits; tests
// and tooling match them with errors.Is.
var (
	ErrUnknownInstruction  = errors.New("unknown instruction")
	ErrArgumentMismatch    = errors.New("argument mismatch")
	ErrUndeclaredSymbol    = errors.New("undeclared symbol")
	ErrDuplicateSymbol     = errors.New("duplicate symbol")
	ErrInvalidLineStart    = errors.New("invalid line start")
	ErrCharacterOutOfRange = errors.New("character out of range")
	ErrStringTooLong       = errors.New("string too long")
	ErrIntegerTooLarge     = errors.New("integer too large")
)

// Error is a compilation failure at a source position.
type Error struct {
	Kind   error // one of the kind sentinels above
	Line   int
	Index  int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("compile error on line %d (index %d): %s", e.Line, e.Index, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func failf(kind error, line, index int, format string, args ...any) error {
	return &Error{Kind: kind, Line: line, Index: index, Detail: fmt.Sprintf(format, args...)}
}
