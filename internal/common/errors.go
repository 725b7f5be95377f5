// Package common defines shared constants, error kinds and small helpers
// used across the taskkeeper core and its terminal client. Callers should
// use errors.Is to match the kind sentinels.
package common

import "errors"

var (
	// Input rejected: malformed email, weak password, short username,
	// duplicate email, oversized upload.
	ErrValidation = errors.New("validation error")

	// The operation targets an email that is not registered.
	ErrNotFound = errors.New("not found")

	// Digest computed with the stored salt does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Biometric errors.
	ErrUnsupported = errors.New("unsupported")
	ErrPlatform    = errors.New("platform error")
)

// User-facing messages. They are surfaced verbatim by the client.
const (
	MsgInvalidEmail      = "Invalid email format"
	MsgEmailRegistered   = "Email already registered"
	MsgUsernameTooShort  = "Username must be at least 3 characters long"
	MsgWeakPassword      = "Password must be at least 8 characters long and contain uppercase, lowercase, number, and special character"
	MsgUserNotFound      = "User not found"
	MsgInvalidPassword   = "Invalid password"
	MsgBiometricNotAvail = "Biometric authentication not supported on this device"
	MsgBiometricFailed   = "Failed to enable biometric authentication"
	MsgPictureTooLarge   = "Profile picture must be less than 5MB"
	MsgPictureInvalid    = "Profile picture must be a PNG, JPEG, GIF, BMP or WebP image"
)

// Error is a recoverable failure of a core operation. Kind is one of the
// sentinels above and Msg is the text shown to the user.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

// Is reports whether target is the kind sentinel of e.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError returns an *Error of kind ErrValidation.
func NewValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

// NewNotFoundError returns an *Error of kind ErrNotFound.
func NewNotFoundError() error {
	return &Error{Kind: ErrNotFound, Msg: MsgUserNotFound}
}

// NewInvalidCredentialsError returns an *Error of kind ErrInvalidCredentials.
func NewInvalidCredentialsError() error {
	return &Error{Kind: ErrInvalidCredentials, Msg: MsgInvalidPassword}
}

// NewUnsupportedError returns an *Error of kind ErrUnsupported.
func NewUnsupportedError() error {
	return &Error{Kind: ErrUnsupported, Msg: MsgBiometricNotAvail}
}

// NewPlatformError wraps a failed platform ceremony.
func NewPlatformError(cause error) error {
	return &Error{Kind: ErrPlatform, Msg: MsgBiometricFailed, Err: cause}
}
