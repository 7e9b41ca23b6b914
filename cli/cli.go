// Package cli provides the command-line interface for VPN Supervisor.
// Every command is a one-shot operation running through the supervisor's
// batch-mode event loop.
package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/yllada/vpn-supervisor/common"
	"github.com/yllada/vpn-supervisor/config"
	"github.com/yllada/vpn-supervisor/keyring"
	"github.com/yllada/vpn-supervisor/nm"
	"github.com/yllada/vpn-supervisor/storage"
	"github.com/yllada/vpn-supervisor/trust"
)

// CLI represents the command-line interface.
type CLI struct {
	cfg   *config.Config
	store *storage.Store
}

// New creates a new CLI instance.
func New(cfg *config.Config) (*CLI, error) {
	store, err := storage.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	return &CLI{
		cfg:   cfg,
		store: store,
	}, nil
}

// Close releases the CLI's resources.
func (c *CLI) Close() error {
	return c.store.Close()
}

// supervisor builds a batch-mode supervisor over the system bus. Each
// one-shot command consumes its own supervisor.
func (c *CLI) supervisor() (*nm.Supervisor, error) {
	s, err := nm.NewSupervisor(c.store)
	if err != nil {
		return nil, fmt.Errorf("failed to reach the connection manager: %w", err)
	}
	s.Activator.SetRetryDelay(c.cfg.RetryDelay())
	return s, nil
}

// Configure imports the profile document at profilePath, with the
// private key and certificate read from keyPath and certPath, and saves
// it as the managed connection. The key material is additionally stored
// in the keyring under the connection UUID.
func (c *CLI) Configure(profilePath, keyPath, certPath string) error {
	profile, err := os.ReadFile(profilePath)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read private key: %w", err)
	}
	cert, err := os.ReadFile(certPath)
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	s, err := c.supervisor()
	if err != nil {
		return err
	}

	fmt.Println("Saving VPN configuration...")
	if err := s.SaveConnection(string(profile), string(key), string(cert)); err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	uuid, ok, err := c.store.UUID()
	if err != nil || !ok {
		return fmt.Errorf("connection saved but its UUID could not be read back")
	}

	if err := keyring.StoreKeyPair(uuid, string(key), string(cert)); err != nil {
		// The connection itself is saved; missing keyring material only
		// affects later diagnostic read-back.
		common.LogWarn("Could not store key material in keyring: %v", err)
	}

	fmt.Printf("✓ Configuration saved (connection %s)\n", shortID(uuid))
	return nil
}

// Connect activates the managed connection.
func (c *CLI) Connect() error {
	uuid, err := c.managedUUID()
	if err != nil {
		return err
	}

	s, err := c.supervisor()
	if err != nil {
		return err
	}

	fmt.Printf("Connecting %s...\n", shortID(uuid))
	if err := s.ActivateConnection(uuid); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	fmt.Println("✓ Activation requested")
	return nil
}

// Disconnect deactivates the managed connection if it is still the
// primary active connection.
func (c *CLI) Disconnect() error {
	uuid, err := c.managedUUID()
	if err != nil {
		return err
	}

	s, err := c.supervisor()
	if err != nil {
		return err
	}

	fmt.Printf("Disconnecting %s...\n", shortID(uuid))
	if err := s.DeactivateConnection(uuid); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	fmt.Println("✓ Disconnected")
	return nil
}

// Status shows the current VPN connection status.
func (c *CLI) Status() error {
	s, err := c.supervisor()
	if err != nil {
		return err
	}

	uuid, state, err := s.Observer.Poll()
	if err != nil {
		return fmt.Errorf("failed to read connection status: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONNECTION\tSTATUS")
	fmt.Fprintln(w, "----------\t------")
	id := uuid
	if id == "" {
		id = "-"
	} else {
		id = shortID(id)
	}
	fmt.Fprintf(w, "%s\t%s\n", id, state)
	w.Flush()
	return nil
}

// Monitor subscribes to VPN state changes and prints each transition
// until interrupted. The initial state is printed immediately.
func (c *CLI) Monitor() error {
	s, err := c.supervisor()
	if err != nil {
		return err
	}

	err = s.Observer.Subscribe(func(state nm.VpnState, reason nm.StateReason) {
		if reason == nm.ReasonNone || reason == nm.ReasonUnknown {
			fmt.Printf("%s\n", state)
			return
		}
		fmt.Printf("%s (%s)\n", state, reason)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to state changes: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		s.Loop.Stop()
	}()

	s.Loop.Run()
	return nil
}

// Verify checks the detached signature at signaturePath against the file
// at filePath using the trusted verify keys.
func (c *CLI) Verify(signaturePath, filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	rawSig, err := os.ReadFile(signaturePath)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	signature, err := SignatureFromFile(string(rawSig))
	if err != nil {
		return err
	}

	verifier, err := trust.NewVerifier(c.cfg.TrustedKeys())
	if err != nil {
		return fmt.Errorf("invalid verify keys: %w", err)
	}

	if _, err := verifier.Validate(signature, content); err != nil {
		if errors.Is(err, common.ErrBadSignature) {
			return fmt.Errorf("signature of %s did not verify against any trusted key", filePath)
		}
		return err
	}

	fmt.Printf("✓ Signature of %s is valid\n", filePath)
	return nil
}

// managedUUID returns the UUID of the managed connection, failing when
// none has been configured yet.
func (c *CLI) managedUUID() (string, error) {
	uuid, ok, err := c.store.UUID()
	if err != nil {
		return "", fmt.Errorf("failed to read state store: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: run --configure first", common.ErrNoStoredUUID)
	}
	return uuid, nil
}

// SignatureFromFile extracts the base64 signature line from a detached
// signature file, skipping comment lines.
func SignatureFromFile(raw string) (string, error) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "untrusted comment:") {
			continue
		}
		return line, nil
	}
	return "", fmt.Errorf("%w: signature file has no signature line", common.ErrMalformedInput)
}

// shortID truncates a UUID for display.
func shortID(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`VPN Supervisor - Command Line Interface

Usage:
  vpn-supervisor [OPTIONS]

Options:
  --version               Show version and exit
  --verbose               Enable verbose logging
  --configure PROFILE     Save a VPN profile as the managed connection
  --key FILE              Private key file (with --configure)
  --cert FILE             Certificate file (with --configure)
  --connect               Activate the managed connection
  --disconnect            Deactivate the managed connection
  --status                Show current connection status
  --monitor               Follow connection state changes
  --verify SIGFILE        Verify a detached signature
  --file FILE             File to verify (with --verify)
  --help                  Show this help message

Examples:
  vpn-supervisor --configure client.ovpn --key client.key --cert client.crt
  vpn-supervisor --connect
  vpn-supervisor --status
  vpn-supervisor --verify profile.ovpn.minisig --file profile.ovpn`)
}
