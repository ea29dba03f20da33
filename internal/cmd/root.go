package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sweetshop/internal/config"
	"sweetshop/internal/logger"
)

const serviceName = "sweetshop"

var rootCmd = &cobra.Command{
	Use:   "sweetshop",
	Short: "Sweet Shop - a small online confectionery",
	Long: `Sweet Shop serves a product catalog, user accounts and per-user carts
kept in XML documents, either as files in a data directory or as records
in MongoDB.

Run "sweetshop serve" to start the HTTP server, or
"sweetshop verify-products" to check the product setup.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (config.Config, zerolog.Logger, error) {
	if err := config.Load(); err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	cfg := config.AppEnv
	l := logger.New(serviceName, cfg.LogLevel, cfg.Environment.PrettyLogs())
	return cfg, l, nil
}
