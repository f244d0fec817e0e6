package dice

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	DivideByZero ErrorKind = iota + 1
	ModuloByZero
	InvalidDiceOperand
	MissingSides
	MalformedNumeral
)

// ErrDivideByZero indicates a division whose right operand evaluated to zero.
var ErrDivideByZero = errors.New("division by zero")

// ErrModuloByZero indicates a modulo whose right operand evaluated to zero.
var ErrModuloByZero = errors.New("modulo by zero")

// ErrInvalidDiceOperand indicates a dice count, side count or filter count
// that is not a usable non-negative integer.
var ErrInvalidDiceOperand = errors.New("dice count/sides must be a non-negative integer")

// ErrMissingSides indicates a dice roll with no side count.
var ErrMissingSides = errors.New("dice roll is missing its number of sides")

// ErrMalformedNumeral indicates a literal that is not a number.
var ErrMalformedNumeral = errors.New("malformed numeral")

func (k ErrorKind) sentinel() error {
	switch k {
	case DivideByZero:
		return ErrDivideByZero
	case ModuloByZero:
		return ErrModuloByZero
	case InvalidDiceOperand:
		return ErrInvalidDiceOperand
	case MissingSides:
		return ErrMissingSides
	case MalformedNumeral:
		return ErrMalformedNumeral
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	switch k {
	case DivideByZero:
		return "DivideByZero"
	case ModuloByZero:
		return "ModuloByZero"
	case InvalidDiceOperand:
		return "InvalidDiceOperand"
	case MissingSides:
		return "MissingSides"
	case MalformedNumeral:
		return "MalformedNumeral"
	default:
		return "Unknown"
	}
}

// EvaluationError reports an expression that parsed but cannot be computed.
// Pos is the offset of the offending dice roll, or -1 when the failure is not
// tied to one.
type EvaluationError struct {
	Kind    ErrorKind
	Pos     int
	Message string
}

func (e *EvaluationError) Error() string {
	base := e.Kind.sentinel()
	msg := "evaluation failed"
	if base != nil {
		msg = base.Error()
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("at position %d, %s", e.Pos, msg)
	}
	return msg
}

// Unwrap exposes the sentinel for errors.Is.
func (e *EvaluationError) Unwrap() error {
	return e.Kind.sentinel()
}

// IsEvaluationError reports whether err is an evaluation error of kind.
func IsEvaluationError(kind ErrorKind, err error) bool {
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return evalErr.Kind == kind
	}
	return false
}

func evalErrorf(kind ErrorKind, pos int, format string, args ...any) *EvaluationError {
	return &EvaluationError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
