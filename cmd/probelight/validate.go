package main

import (
	"fmt"

	"github.com/probelight/probelight/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the agent.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a probelight configuration file without starting the agent.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  probelight validate -c config.yaml
  probelight validate --config /etc/probelight/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Device:          %s\n", cfg.DeviceName)
	fmt.Printf("  Poll interval:   %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Request timeout: %s\n", cfg.RequestTimeout.Duration())
	fmt.Printf("  Endpoints:       %d\n", len(cfg.Endpoints))

	return nil
}
