package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeConfig           Code = "CONFIG_ERROR"
	CodePrecondition     Code = "PRECONDITION_FAILED"
	CodeInsufficientData Code = "INSUFFICIENT_DATA"
	CodePersistence      Code = "PERSISTENCE_ERROR"
	CodeCanceled         Code = "CANCELED"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeDependency       Code = "DEPENDENCY_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Metadata describes how a run reacts to an error class.
type Metadata struct {
	ExitCode  int
	Fatal     bool
	Retryable bool
	Summary   string
}

var metadataByCode = map[Code]Metadata{
	CodeConfig: {
		ExitCode: 2,
		Fatal:    true,
		Summary:  "invalid configuration",
	},
	CodePrecondition: {
		ExitCode: 3,
		Fatal:    true,
		Summary:  "seed data missing",
	},
	CodeInsufficientData: {
		ExitCode: 0,
		Fatal:    false,
		Summary:  "fewer source records than requested",
	},
	CodePersistence: {
		ExitCode: 4,
		Fatal:    true,
		Summary:  "store rejected a batch",
	},
	CodeCanceled: {
		ExitCode: 130,
		Fatal:    true,
		Summary:  "run canceled",
	},
	CodeValidation: {
		ExitCode: 2,
		Fatal:    true,
		Summary:  "validation failed",
	},
	CodeDependency: {
		ExitCode:  5,
		Fatal:     true,
		Retryable: true,
		Summary:   "dependency unavailable",
	},
	CodeInternal: {
		ExitCode:  1,
		Fatal:     true,
		Retryable: true,
		Summary:   "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// ExitCode maps any error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if typed := As(err); typed != nil {
		return MetadataFor(typed.Code()).ExitCode
	}
	return MetadataFor(CodeInternal).ExitCode
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether any error in the chain carries code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
