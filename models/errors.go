package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound the target record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrReferenceNotFound a supplied customer/service/employee id does not resolve.
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// ValidationError describes a single out-of-policy field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
}

func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// NotFoundError carries which entity was missing.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ReferenceNotFoundError reports a failed foreign-key resolution on a
// create/update. It matches ErrReferenceNotFound with errors.Is.
type ReferenceNotFoundError struct {
	Entity string
	ID     uint
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("referenced %s with id %d not found", e.Entity, e.ID)
}

func (e *ReferenceNotFoundError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// ConflictError rejects an operation that would break referential integrity
// or a uniqueness constraint.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StorageError wraps a blob store upload/delete failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
