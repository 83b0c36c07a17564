package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenInvalid indicates a signed cookie or token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired indicates a signed cookie or token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrExchangeRejected is the failure marker of a credential exchange.
	// The remote service answered, but did not hand out a bearer token.
	ErrExchangeRejected = errors.New("credential exchange rejected")

	// ErrInvalidTransition indicates an illegal login state change
	ErrInvalidTransition = errors.New("invalid login state transition")
)
