package domain

import (
	"fmt"
	"net/http"
)

// AuthError is a failed token validation. Status is 401 or 403.
type AuthError struct {
	Reason string
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	return e.Reason
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewUnauthorized builds a 401 AuthError.
func NewUnauthorized(reason string, err error) *AuthError {
	return &AuthError{Reason: reason, Status: http.StatusUnauthorized, Err: err}
}

// NewForbidden builds a 403 AuthError.
func NewForbidden(reason string) *AuthError {
	return &AuthError{Reason: reason, Status: http.StatusForbidden}
}

// StorageError is a failed conversation store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// GatewayError is a failed call to the completion provider.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// InvalidRequestError is a malformed chat request.
type InvalidRequestError struct {
	Field   string
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}
