package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnTengye/contractdesk/backend/config"
	"github.com/AnTengye/contractdesk/backend/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "contractdesk",
	Short: "contractdesk - contract ledger administration",
	Long: `contractdesk serves the contract and lending ledgers over HTTP: filtered,
sorted and paginated tables, inline edits, bulk delete, attachments,
approval charts and CSV/XLSX export.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

// loadConfig reads the config file and installs the configured logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
