package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Quiz workflow errors
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeTransport           ErrorCode = "TRANSPORT_ERROR"
	CodeSelectionFull       ErrorCode = "SELECTION_FULL"
	CodeIncompleteSelection ErrorCode = "INCOMPLETE_SELECTION"
	CodeAuthRequired        ErrorCode = "AUTH_REQUIRED"
	CodeBusy                ErrorCode = "BUSY"
	CodeInvalidState        ErrorCode = "INVALID_STATE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// WithContext attaches a detail value and returns the same error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewTransportError(message string, cause error) *DomainError {
	return NewError(CodeTransport, message, cause)
}

func NewSelectionFullError(capacity int) *DomainError {
	return NewError(CodeSelectionFull, fmt.Sprintf("You can only select %d questions", capacity), nil).
		WithContext("capacity", capacity)
}

func NewIncompleteSelectionError(selected, required int) *DomainError {
	missing := required - selected
	return NewError(CodeIncompleteSelection,
		fmt.Sprintf("Please select exactly %d questions (%d more needed)", required, missing), nil).
		WithContext("selected", selected).
		WithContext("required", required).
		WithContext("missing", missing)
}

func NewAuthRequiredError(action string) *DomainError {
	return NewError(CodeAuthRequired, fmt.Sprintf("Please sign in to %s.", action), nil)
}

func NewBusyError(operation string) *DomainError {
	return NewError(CodeBusy, fmt.Sprintf("%s is already in progress", operation), nil)
}

func NewInvalidStateError(operation string, state SessionState) *DomainError {
	return NewError(CodeInvalidState, fmt.Sprintf("cannot %s in state %s", operation, state), nil).
		WithContext("state", string(state))
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewUnauthorizedError(message string, cause error) *DomainError {
	return NewError(CodeUnauthorized, message, cause)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
