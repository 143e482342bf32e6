package mapper

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes mapper failures.
type ErrorCode string

const (
	// ErrCodeShape indicates the statement shape could not be keyed.
	ErrCodeShape ErrorCode = "SHAPE"

	// ErrCodeGenerate indicates statement generation failed.
	ErrCodeGenerate ErrorCode = "GENERATE"

	// ErrCodeExtract indicates parameter extraction failed for a document.
	ErrCodeExtract ErrorCode = "EXTRACT"
)

// Error is returned by every Mapper operation.
type Error struct {
	Code  ErrorCode
	Model string
	Kind  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Model, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsExtractError reports whether err is a parameter extraction failure.
// Uses errors.As to handle wrapped errors.
func IsExtractError(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeExtract
	}
	return false
}
