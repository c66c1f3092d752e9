package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"credential-bridge/internal/api"
	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the credential bridge API server",
	Long: `Start the HTTP API server exposing the credential operations and the
WebSocket event stream. The server runs until interrupted.`,
	RunE: runServeCommand,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	logger := logging.Initialize(logLevel)

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.SetupFileLogging(logger, cfg.LogFile); err != nil {
		logger.WithError(err).Warn("Failed to set up file logging")
	}

	orchestrator, closeBackends, err := buildManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackends()

	server := api.NewServer(cfg, orchestrator, logger)
	orchestrator.OnEvent(server.Events().Broadcast)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
