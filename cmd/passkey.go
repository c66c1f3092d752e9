package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
)

var passkeyCmd = &cobra.Command{
	Use:   "create-passkey",
	Short: "Create a passkey credential",
	Long: `Forward a serialized WebAuthn creation request to the platform store
and print the serialized registration response.`,
	RunE: runPasskeyCommand,
}

var passkeyRequestFile string

func init() {
	passkeyCmd.Flags().StringVar(&passkeyRequestFile, "request", "", "Path to the creation request JSON (required)")
	passkeyCmd.MarkFlagRequired("request")

	rootCmd.AddCommand(passkeyCmd)
}

func runPasskeyCommand(cmd *cobra.Command, args []string) error {
	logger := logging.Initialize(logLevel)

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	requestJSON, err := os.ReadFile(passkeyRequestFile)
	if err != nil {
		return fmt.Errorf("failed to read creation request: %w", err)
	}

	orchestrator, closeBackends, err := buildManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackends()

	response, err := orchestrator.CreatePasskey(context.Background(), string(requestJSON))
	if err != nil {
		return err
	}

	fmt.Println(response)
	return nil
}
