// Package common provides shared constants, types, and utilities
// used across the VPN Supervisor application.
package common

// UUIDStore defines the interface for persisting the identifier of the
// single managed VPN connection. At most one UUID is stored at a time;
// absence means no connection has ever been provisioned.
type UUIDStore interface {
	// UUID returns the stored connection UUID. The boolean reports
	// whether a UUID has been stored at all.
	UUID() (string, bool, error)
	// SetUUID replaces the stored connection UUID.
	SetUUID(uuid string) error
}

// SecretStore defines the interface for credential storage.
// Implementations may use the system keyring, encrypted files, etc.
type SecretStore interface {
	// Store saves a secret under the given key.
	Store(key, secret string) error
	// Get retrieves a secret by key.
	Get(key string) (string, error)
	// Delete removes a secret by key.
	Delete(key string) error
}

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}
