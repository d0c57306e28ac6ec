package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound              = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists         = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation            = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation      = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied      = new(ErrCodePermissionDenied, "permission denied")
	ErrUnpaidHistory         = new(ErrCodeUnpaidHistory, "earlier months are not fully paid")
	ErrAmountExceedsExpected = new(ErrCodeAmountExceedsExpected, "amount exceeds expected month total")
	ErrMonthAlreadyFree      = new(ErrCodeMonthAlreadyFree, "month is already covered by a free entry")
	ErrImmutable             = new(ErrCodeImmutable, "record can no longer be modified")
	ErrInUse                 = new(ErrCodeInUse, "record is referenced by other records")
	ErrProvider              = new(ErrCodeProvider, "billing provider call failed")
	ErrHTTPClient            = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase              = new(ErrCodeDatabase, "database error")
	ErrSystem                = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:              http.StatusNotFound,
		ErrAlreadyExists:         http.StatusConflict,
		ErrValidation:            http.StatusBadRequest,
		ErrInvalidOperation:      http.StatusBadRequest,
		ErrPermissionDenied:      http.StatusForbidden,
		ErrUnpaidHistory:         http.StatusBadRequest,
		ErrAmountExceedsExpected: http.StatusBadRequest,
		ErrMonthAlreadyFree:      http.StatusBadRequest,
		ErrImmutable:             http.StatusBadRequest,
		ErrInUse:                 http.StatusBadRequest,
		ErrProvider:              http.StatusInternalServerError,
		ErrHTTPClient:            http.StatusInternalServerError,
		ErrDatabase:              http.StatusInternalServerError,
		ErrSystem:                http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound              = "not_found"
	ErrCodeAlreadyExists         = "already_exists"
	ErrCodeValidation            = "validation_error"
	ErrCodeInvalidOperation      = "invalid_operation"
	ErrCodePermissionDenied      = "permission_denied"
	ErrCodeUnpaidHistory         = "unpaid_history"
	ErrCodeAmountExceedsExpected = "amount_exceeds_expected"
	ErrCodeMonthAlreadyFree      = "month_already_free"
	ErrCodeImmutable             = "immutable_record"
	ErrCodeInUse                 = "record_in_use"
	ErrCodeProvider              = "provider_error"
	ErrCodeHTTPClient            = "http_client_error"
	ErrCodeDatabase              = "database_error"
	ErrCodeSystemError           = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

// New creates a new InternalError with the given code and message
func New(code string, message string) *InternalError {
	return new(code, message)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsUnpaidHistory checks if an error is a payment sequencing error
func IsUnpaidHistory(err error) bool {
	return errors.Is(err, ErrUnpaidHistory)
}

// IsAmountExceedsExpected checks if an error is an over-payment guard error
func IsAmountExceedsExpected(err error) bool {
	return errors.Is(err, ErrAmountExceedsExpected)
}

// IsMonthAlreadyFree checks if an error is a free-month conflict error
func IsMonthAlreadyFree(err error) bool {
	return errors.Is(err, ErrMonthAlreadyFree)
}

// IsImmutable checks if an error is an immutable record error
func IsImmutable(err error) bool {
	return errors.Is(err, ErrImmutable)
}

// IsInUse checks if an error is a record in use error
func IsInUse(err error) bool {
	return errors.Is(err, ErrInUse)
}

// IsProvider checks if an error is a billing provider error
func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
