package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "socialpay-api",
		Short:         "Task reward platform API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(loadConfig())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(loadConfig())
		},
	})
	cmd.AddCommand(migrateCmd())

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate(loadConfig().DatabaseURL, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate(loadConfig().DatabaseURL, false)
		},
	})
	return cmd
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
	}
	return cfg
}
