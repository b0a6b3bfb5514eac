package services

import "errors"

// Domain errors raised by the service layer. Handlers classify these with
// errors.Is and map them to HTTP statuses; anything unclassified is treated as
// an internal error and surfaced only as a generic message.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrForbidden          = errors.New("permission denied")
)
