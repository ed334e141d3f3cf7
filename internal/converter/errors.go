package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound indicates the input workbook does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFile indicates the input is not an Open XML workbook.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrInvalidRange indicates a malformed or inverted A1 range.
	ErrInvalidRange = errors.New("invalid range")
)

// SheetError wraps a failure while scanning a single sheet.
type SheetError struct {
	Sheet string
	Op    string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %s: %v", e.Sheet, e.Op, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}
