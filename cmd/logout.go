package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials and revoke the federated session",
	RunE:  runLogoutCommand,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogoutCommand(cmd *cobra.Command, args []string) error {
	logger := logging.Initialize(logLevel)

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	orchestrator, closeBackends, err := buildManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackends()

	message, err := orchestrator.Logout(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(message)
	return nil
}
