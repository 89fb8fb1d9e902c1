package sales

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across the service, storage backends and outer layers.
var (
	// ErrValidation is returned when raw input (dni, fecha, cantidad) is malformed.
	ErrValidation = errors.New("invalid sale data")

	// ErrDuplicateKey is returned when creating a sale whose dni is already stored.
	ErrDuplicateKey = errors.New("sale already exists")

	// ErrNotFound is returned when a sale with the given dni is not found.
	ErrNotFound = errors.New("sale not found")

	// ErrUnknownField is returned when an update names a field that cannot be set.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownVariant is returned when a record cannot be resolved to online or local.
	ErrUnknownVariant = errors.New("unknown sale variant")

	// ErrStorage wraps I/O and connection failures of a backend.
	ErrStorage = errors.New("storage failure")
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// UnknownFieldError is returned by NewPatch and by backends when the field
// does not exist or belongs to the other channel.
type UnknownFieldError struct {
	Field  string
	Reason string
}

func (e *UnknownFieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unknown field %q", e.Field)
	}
	return fmt.Sprintf("unknown field %q: %s", e.Field, e.Reason)
}

func (e *UnknownFieldError) Unwrap() error {
	return ErrUnknownField
}

// StorageError carries the backend and operation that failed.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError wraps err unless it is already a domain error.
func NewStorageError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// NotFound builds the error returned for a missing dni.
func NotFound(dni int) error {
	return fmt.Errorf("%w: dni %d", ErrNotFound, dni)
}

// Duplicate builds the error returned when dni is already stored.
func Duplicate(dni int) error {
	return fmt.Errorf("%w: dni %d", ErrDuplicateKey, dni)
}

// IsDomainError reports whether err already belongs to the taxonomy above.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrUnknownVariant) ||
		errors.Is(err, ErrStorage)
}
