package main

import (
	"fmt"
	"os"

	"anneta.link/configs"
	"anneta.link/configs/configslog"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "annetacli",
		Short:   "Operator tooling for the donation ledger",
		Version: Version,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(transfersCmd())
	rootCmd.AddCommand(donationsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, the logger and the database connection for
// every subcommand.
func bootstrap() (*configs.AppConfig, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	configslog.Init(cfg.AppEnv)
	if _, err := configs.InitDB(cfg.DatabaseDSN); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, nil
}

func teardown() {
	configs.CloseDB()
	configslog.Sync()
}
