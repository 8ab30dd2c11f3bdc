package model

import (
	"errors"
	"fmt"
)

// ValidationErrorCode categorizes invalid input.
type ValidationErrorCode string

const (
	// ErrCodeEmptyCart indicates a submit with no cart lines.
	ErrCodeEmptyCart ValidationErrorCode = "EMPTY_CART"

	// ErrCodeMissingField indicates a required field was blank.
	ErrCodeMissingField ValidationErrorCode = "MISSING_FIELD"

	// ErrCodeInvalidPrice indicates a negative price, or a non-positive
	// price where one is required.
	ErrCodeInvalidPrice ValidationErrorCode = "INVALID_PRICE"

	// ErrCodeInvalidQuantity indicates a negative quantity.
	ErrCodeInvalidQuantity ValidationErrorCode = "INVALID_QUANTITY"

	// ErrCodeInvalidCategory indicates an unknown product category.
	ErrCodeInvalidCategory ValidationErrorCode = "INVALID_CATEGORY"

	// ErrCodeInvalidStatus indicates an unknown product or order status.
	ErrCodeInvalidStatus ValidationErrorCode = "INVALID_STATUS"

	// ErrCodeInactiveProduct indicates an attempt to order an inactive product.
	ErrCodeInactiveProduct ValidationErrorCode = "INACTIVE_PRODUCT"

	// ErrCodeInvalidInput indicates malformed input such as an unknown page
	// or an unsupported image type.
	ErrCodeInvalidInput ValidationErrorCode = "INVALID_INPUT"
)

// ValidationError reports a missing or invalid field. Returning one means no
// state was changed.
type ValidationError struct {
	Code    ValidationErrorCode
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(code ValidationErrorCode, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// MissingFieldError creates the ValidationError for a blank required field.
func MissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeMissingField,
		Field:   field,
		Message: field + " is required",
	}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMissingField reports whether err is a ValidationError for a blank field.
func IsMissingField(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeMissingField
	}
	return false
}

// ValidationCode returns the code of a wrapped ValidationError, or "".
func ValidationCode(err error) ValidationErrorCode {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

// PersistenceError reports a failed store call. In-memory state the caller
// holds (cart contents, form fields) is still valid when one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps a store failure. A nil err returns nil, and an
// err that already is a PersistenceError or ErrNotConnected is returned as-is.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotConnected) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is, or wraps, a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// ErrNotConnected is returned by every store-backed action when no store
// connection was established at startup.
var ErrNotConnected = errors.New("store not connected: configure the database before use")
