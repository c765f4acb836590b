// Package docxedit provides index-addressed batch editing of DOCX documents.
package docxedit

import (
	"fmt"
)

// RangeError reports an index outside the valid span of its index space.
type RangeError struct {
	Space string
	Index int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range (document has %d)", e.Space, e.Index, e.Count)
}

// NewRangeError creates a new range error for the given index space.
func NewRangeError(space string, index, count int) error {
	return &RangeError{
		Space: space,
		Index: index,
		Count: count,
	}
}

// GuardError reports a vetoed delete of a paragraph that still carries
// content.
type GuardError struct {
	Index  int
	Reason string
}

func (e *GuardError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("paragraph %d is not empty (%s); pass force to delete anyway", e.Index, e.Reason)
	}
	return fmt.Sprintf("paragraph %d is not empty; pass force to delete anyway", e.Index)
}

// NewGuardError creates a new guard error.
func NewGuardError(index int, reason string) error {
	return &GuardError{
		Index:  index,
		Reason: reason,
	}
}

// NotFoundError reports a referenced local file that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(path string) error {
	return &NotFoundError{Path: path}
}

// UnknownOperationError reports an operation kind the engine does not
// recognize.
type UnknownOperationError struct {
	Kind string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation: %s", e.Kind)
}

// NewUnknownOperationError creates a new unknown-operation error.
func NewUnknownOperationError(kind string) error {
	return &UnknownOperationError{Kind: kind}
}

// DocumentError represents an error during document load or save.
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error.
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsRangeError checks if an error is a range error
func IsRangeError(err error) bool {
	_, ok := err.(*RangeError)
	return ok
}

// IsGuardError checks if an error is a guard error
func IsGuardError(err error) bool {
	_, ok := err.(*GuardError)
	return ok
}

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsUnknownOperationError checks if an error is an unknown-operation error
func IsUnknownOperationError(err error) bool {
	_, ok := err.(*UnknownOperationError)
	return ok
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	_, ok := err.(*DocumentError)
	return ok
}
