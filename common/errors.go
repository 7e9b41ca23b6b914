// Package common provides shared constants, types, and utilities
// used across the VPN Supervisor application.
package common

import "errors"

// Sentinel errors for supervisor operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Signature verification errors.
	ErrBadSignature   = errors.New("signature did not verify against any trusted key")
	ErrMalformedInput = errors.New("malformed signature or key material")

	// Connection lifecycle errors.
	ErrConnectionNotResolved = errors.New("connection not resolved")
	ErrManagerRejected       = errors.New("connection manager rejected the operation")
	ErrAmbiguousActiveState  = errors.New("more than one VPN connection active")
	ErrImportFailed          = errors.New("profile import failed")

	// Persisted state errors.
	ErrStateStorage = errors.New("failed to access state store")
	ErrNoStoredUUID = errors.New("no connection has been provisioned")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
