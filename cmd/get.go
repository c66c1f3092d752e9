package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
	"credential-bridge/internal/types"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Retrieve a credential",
	Long: `Query the platform credential store across the enabled credential kinds
and print the resulting credential envelope as JSON.`,
	RunE: runGetCommand,
}

var (
	getPassword        bool
	getPasskey         bool
	getFederated       bool
	getPasskeyRequest  string
	getPreferImmediate bool
)

func init() {
	getCmd.Flags().BoolVar(&getPassword, "password", true, "Include password credentials")
	getCmd.Flags().BoolVar(&getPasskey, "passkey", true, "Include passkey credentials")
	getCmd.Flags().BoolVar(&getFederated, "federated", true, "Include federated credentials")
	getCmd.Flags().StringVar(&getPasskeyRequest, "passkey-request", "", "Serialized passkey assertion request JSON")
	getCmd.Flags().BoolVar(&getPreferImmediate, "prefer-immediate", false, "Only surface immediately available credentials")

	rootCmd.AddCommand(getCmd)
}

func runGetCommand(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	if _, err := orchestrator.Init(ctx, getPreferImmediate, cfg.FederatedClientID); err != nil {
		return err
	}

	envelope, err := orchestrator.GetCredentials(ctx, getPasskeyRequest, types.FetchOptions{
		PasswordEnabled:  getPassword,
		PasskeyEnabled:   getPasskey,
		FederatedEnabled: getFederated,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(envelope)
}
