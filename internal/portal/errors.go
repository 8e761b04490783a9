package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a page element the action needs is missing.
	// Callers treat it as "feature unavailable this cycle".
	ErrNotFound = errors.New("element not found")

	// ErrInsufficientTroops is returned when the village lacks the troops
	// an escort or raid needs
	ErrInsufficientTroops = errors.New("insufficient troops")

	// ErrClosed is returned for calls on a closed session
	ErrClosed = errors.New("portal session closed")
)

// RPC error codes the bridge uses for well-known failures
const (
	CodeNotFound           = 404
	CodeInsufficientTroops = 409
	CodeUnauthorized       = 401
)

// RPCError represents a JSON-RPC error returned by the bridge
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface for RPCError
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error: code=%d, message=%s", e.Code, e.Message)
}

// Unwrap maps well-known codes onto the package sentinels
func (e *RPCError) Unwrap() error {
	switch e.Code {
	case CodeNotFound:
		return ErrNotFound
	case CodeInsufficientTroops:
		return ErrInsufficientTroops
	}
	return nil
}

// LoginError is returned when the login form is rejected
type LoginError struct {
	User string
	Err  error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login as %q failed: %v", e.User, e.Err)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// TokenMissingError is returned when login succeeded but the page carries
// no session token, so no later action can be authorised
type TokenMissingError struct {
	Page string
}

func (e *TokenMissingError) Error() string {
	return fmt.Sprintf("session token missing on %s", e.Page)
}
