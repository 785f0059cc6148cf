// Package main is the entry point for the probelight CLI.
//
// Probelight can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	probelight run -c config.yaml      # Start the agent
//	probelight validate -c config.yaml # Validate configuration
//	probelight version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "probelight",
	Short: "A tiny endpoint health agent with two status lights",
	Long: `Probelight is a small monitoring agent: it watches a network link,
polls a fixed set of HTTP endpoints concurrently on an interval, and
reflects aggregate health through two binary indicator lights (error and
success), rendered in color on the terminal by default.

Quick start:
  1. Create a config file (probelight.yaml)
  2. Run: probelight run -c probelight.yaml

Example config:
  device_name: kitchen-monitor
  poll_interval: 30s
  endpoints:
    - name: API
      url: https://api.example.com/health`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this probelight binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("probelight %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
