package auth

import "errors"

var (
	// ErrNotFound means the referenced account does not exist. Only the
	// provisioning flows surface this; login deliberately does not, to
	// avoid confirming which emails are registered.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers a wrong password and an email/invite
	// token mismatch alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
