package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the federated identity provider",
	Long: `Run the federated sign-in flow and print the resulting credential as
JSON. The federated client id comes from --client-id or the configuration.`,
	RunE: runLoginCommand,
}

var (
	loginClientID   string
	loginButtonFlow bool
)

func init() {
	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "Federated client id (overrides configuration)")
	loginCmd.Flags().BoolVar(&loginButtonFlow, "button-flow", false, "Use the explicit button flow")

	rootCmd.AddCommand(loginCmd)
}

func runLoginCommand(cmd *cobra.Command, args []string) error {
	logger := logging.Initialize(logLevel)

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	clientID := loginClientID
	if clientID == "" {
		clientID = cfg.FederatedClientID
	}

	orchestrator, closeBackends, err := buildManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackends()

	ctx := context.Background()
	if _, err := orchestrator.Init(ctx, cfg.PreferImmediateCredentials, clientID); err != nil {
		return err
	}

	credential, err := orchestrator.SignInWithFederatedProvider(ctx, loginButtonFlow)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(credential)
}
