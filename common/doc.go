// Package common provides shared constants, types, utilities, and interfaces
// used throughout the VPN Supervisor application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts and file names
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for persisted state, secret storage, and logging
//   - Logger: Structured logging with multiple output destinations
//   - Utils: Common utility functions for file and directory handling
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/vpn-supervisor/common"
//
//	// Use constants
//	delay := common.ActivateRetryDelay
//
//	// Use logger
//	common.LogInfo("Activating connection %s", uuid)
//
//	// Check errors
//	if errors.Is(err, common.ErrBadSignature) {
//	    // Discard the untrusted content
//	}
package common
