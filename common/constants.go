// Package common provides shared constants, types, and utilities
// used across the VPN Supervisor application.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "VPN Supervisor"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "vpn-supervisor"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	StateDBFileName     = "state.db"
	CredentialsFileName = ".credentials"
	LogFileName         = "vpn-supervisor.log"
	ImportFileName      = "client.ovpn"
)

// Default timeouts and intervals.
const (
	// ActivateRetryDelay is how long to wait before re-resolving a
	// connection that NetworkManager reports missing right after it was
	// added. See nm.Activator for the race this papers over.
	ActivateRetryDelay = 100 * time.Millisecond
	// DBusCallTimeout is the timeout for synchronous D-Bus method calls.
	DBusCallTimeout = 25 * time.Second
	// LoopQueueSize is the buffered capacity of the event loop task queue.
	LoopQueueSize = 64
)

// NetworkManager connection types.
const (
	ConnectionTypeVPN = "vpn"
)
