// Package main provides the entry point for VPN Supervisor, a
// command-line client that provisions and supervises a single VPN
// connection through NetworkManager.
//
// Features:
//   - Profile import with update-in-place reconciliation
//   - Activation and deactivation of the managed connection
//   - Connection status reporting
//   - Detached signature verification against trusted keys
//   - Secure key material storage using the system keyring
//
// Usage:
//
//	vpn-supervisor [options]
//
// Environment:
//
//	The application requires NetworkManager with its OpenVPN plugin.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yllada/vpn-supervisor/cli"
	"github.com/yllada/vpn-supervisor/common"
	"github.com/yllada/vpn-supervisor/config"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")

	// Command flags
	configurePath = flag.String("configure", "", "Save a VPN profile as the managed connection")
	keyPath       = flag.String("key", "", "Private key file (with --configure)")
	certPath      = flag.String("cert", "", "Certificate file (with --configure)")
	doConnect     = flag.Bool("connect", false, "Activate the managed connection")
	doDisconnect  = flag.Bool("disconnect", false, "Deactivate the managed connection")
	showStatus    = flag.Bool("status", false, "Show current connection status")
	doMonitor     = flag.Bool("monitor", false, "Follow connection state changes")
	verifyPath    = flag.String("verify", "", "Verify a detached signature file")
	verifyTarget  = flag.String("file", "", "File to verify (with --verify)")
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	logLevel := cfg.Level()
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	if !anyCommand() {
		cli.PrintHelp()
		os.Exit(1)
	}

	if err := runCommand(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// anyCommand reports whether a command flag was given.
func anyCommand() bool {
	return *configurePath != "" || *doConnect || *doDisconnect || *showStatus || *doMonitor || *verifyPath != ""
}

// runCommand dispatches the single requested command.
func runCommand(cfg *config.Config) error {
	app, err := cli.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	switch {
	case *configurePath != "":
		if *keyPath == "" || *certPath == "" {
			return fmt.Errorf("--configure requires --key and --cert")
		}
		return app.Configure(*configurePath, *keyPath, *certPath)
	case *doConnect:
		return app.Connect()
	case *doDisconnect:
		return app.Disconnect()
	case *showStatus:
		return app.Status()
	case *doMonitor:
		return app.Monitor()
	case *verifyPath != "":
		if *verifyTarget == "" {
			return fmt.Errorf("--verify requires --file")
		}
		return app.Verify(*verifyPath, *verifyTarget)
	}
	return nil
}
