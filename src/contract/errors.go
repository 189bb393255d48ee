package contract

import (
	"errors"
	"fmt"
)

// Code classifies the failure of an operation.
type Code int

// Failure codes. The values are part of the error text and must not change.
const (
	RecordNotFound     Code = 1
	RecordFound        Code = 2
	SymbolMismatch     Code = 4
	ParamError         Code = 5
	MemoFormatError    Code = 6
	MissingAuth        Code = 8
	QuantityInvalid    Code = 9
	Oversized          Code = 11
	AccountInvalid     Code = 15
	InvariantViolation Code = 30
)

func (c Code) String() string {
	switch c {
	case RecordNotFound:
		return "RecordNotFound"
	case RecordFound:
		return "RecordFound"
	case SymbolMismatch:
		return "SymbolMismatch"
	case ParamError:
		return "ParamError"
	case MemoFormatError:
		return "MemoFormatError"
	case MissingAuth:
		return "MissingAuth"
	case QuantityInvalid:
		return "QuantityInvalid"
	case Oversized:
		return "Oversized"
	case AccountInvalid:
		return "AccountInvalid"
	case InvariantViolation:
		return "InvariantViolation"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a failed precondition of an operation.
type Error struct {
	Code Code
	Msg  string
}

func errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Errorf returns an Error with the given code.
func Errorf(code Code, format string, args ...interface{}) error {
	return errorf(code, format, args...)
}

// Error renders the error as "[[code]] message".
func (e *Error) Error() string {
	return fmt.Sprintf("[[%d]] %s", int(e.Code), e.Msg)
}

// IsCode reports whether err is, or wraps, an Error with the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the Error in err's chain, or 0.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
