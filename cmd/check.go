package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"credential-bridge/internal/config"
	"credential-bridge/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the platform credential store is available",
	RunE:  runCheckCommand,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Store backend: %s\n", cfg.StoreBackend)
	if orchestrator.IsSupported() {
		fmt.Println("✓ Platform credential store is available")
	} else {
		fmt.Println("✗ Platform credential store is not available")
	}

	for _, status := range orchestrator.Statuses() {
		state := "healthy"
		if !status.Healthy {
			state = "unhealthy"
		}
		fmt.Printf("  provider %-10s %s\n", status.Name, state)
	}

	return nil
}
