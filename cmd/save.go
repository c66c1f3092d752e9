package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
)

var saveCmd = &cobra.Command{
	Use:   "save-password",
	Short: "Save a password credential",
	Long:  `Register a username/password pair with the platform credential store.`,
	RunE:  runSaveCommand,
}

var (
	saveUsername string
	savePassword string
)

func init() {
	saveCmd.Flags().StringVar(&saveUsername, "username", "", "Username to save (required)")
	saveCmd.Flags().StringVar(&savePassword, "password", "", "Password to save (required)")
	saveCmd.MarkFlagRequired("username")
	saveCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(saveCmd)
}

func runSaveCommand(cmd *cobra.Command, args []string) error {
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

	message, err := orchestrator.SavePasswordCredential(context.Background(), saveUsername, savePassword)
	if err != nil {
		return err
	}

	fmt.Println(message)
	return nil
}
