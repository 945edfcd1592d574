package docModel

import (
	"errors"
	"fmt"
)

var (
	// loader input errors - not retryable, the caller must fix the input
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNotFound          = errors.New("file not found")
	ErrNotADirectory     = errors.New("not a directory")

	// expected, user-facing; never a system fault
	ErrDuplicateDocument = errors.New("duplicate document")

	// fatal at construction time, never at call time
	ErrConfiguration = errors.New("invalid configuration")
)

// DuplicateError identifies the pre-existing record so the caller can act on
// it (e.g. poll its status) instead of getting a bare rejection.
type DuplicateError struct {
	ExistingId string
	Filename   string
	Message    string
}

func (e *DuplicateError) Error() string {
	return e.Message
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateDocument
}

func NewFilenameDuplicate(id string, filename string) *DuplicateError {
	return &DuplicateError{
		ExistingId: id,
		Filename:   filename,
		Message:    fmt.Sprintf("document with filename %q already exists (id: %s)", filename, id),
	}
}

func NewContentDuplicate(id string, filename string) *DuplicateError {
	return &DuplicateError{
		ExistingId: id,
		Filename:   filename,
		Message:    fmt.Sprintf("document with identical content already exists (id: %s, filename: %s)", id, filename),
	}
}

// PartialStoreError reports how far a non-transactional embedding store got
// before the failing call. Records stored before the failure stay stored.
type PartialStoreError struct {
	Stored int
	Err    error
}

func (e *PartialStoreError) Error() string {
	return fmt.Sprintf("embedding store failed after %d records: %v", e.Stored, e.Err)
}

func (e *PartialStoreError) Unwrap() error {
	return e.Err
}
