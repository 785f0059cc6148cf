package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/probelight/probelight"
	"github.com/probelight/probelight/config"
	"github.com/spf13/cobra"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// runCmd starts the probelight agent.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the monitoring agent",
	Long: `Start the probelight monitoring agent.

The agent will:
  - Load credentials from a .env file (if present) and the environment
  - Load configuration from the specified YAML file
  - Connect, then poll all configured endpoints on the poll interval
  - Drive the error and success lights on the terminal

The agent runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  probelight run -c config.yaml
  probelight run -c config.yaml --env /etc/probelight/.env`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	runCmd.Flags().String("env", "", "path to a .env file with credentials (optional)")
	_ = runCmd.MarkFlagRequired("config")
}

func runAgent(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	// credentials come from the environment; a .env file is a convenience
	envFile, _ := cmd.Flags().GetString("env")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		// best effort: a missing ./.env is fine
		_ = godotenv.Load()
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"device", cfg.DeviceName,
		"endpoints", len(cfg.Endpoints),
		"poll_interval", cfg.PollInterval.Duration().String(),
	)

	endpoints := make([]probelight.Endpoint, len(cfg.Endpoints))
	for i, ec := range cfg.Endpoints {
		endpoints[i] = probelight.Endpoint{Name: ec.Name, URL: ec.URL}
	}

	opts := []probelight.Option{
		probelight.WithEndpoints(endpoints...),
		probelight.WithDeviceName(cfg.DeviceName),
		probelight.WithPollInterval(cfg.PollInterval.Duration()),
		probelight.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		probelight.WithReconnectDelay(cfg.ReconnectDelay.Duration()),
		probelight.WithConnectAttempts(cfg.ConnectAttempts),
		probelight.WithCredentials(cfg.Network.SSID, cfg.Network.Password),
		probelight.WithConn(probelight.NewHostConn(cfg.Network.CheckAddress)),
		probelight.WithConsoleLights(os.Stderr),
		probelight.WithLogger(logger),
	}
	if cfg.InsecureTLS {
		opts = append(opts, probelight.WithInsecureTLS())
	}

	agent, err := probelight.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := agent.Start(ctx); err != nil {
		return fmt.Errorf("agent error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
