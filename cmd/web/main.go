package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/de-tools/credit-atlas/pkg/server"
	"github.com/de-tools/credit-atlas/pkg/services/config"
	"github.com/de-tools/credit-atlas/pkg/services/credits"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "Start the Credit Atlas web server",
		RunE:  runServer,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store := socrata.NewClient(socrata.Config{
		BaseURL:   cfg.BaseURL,
		DatasetID: cfg.DatasetID,
		AppToken:  cfg.AppToken,
	})
	resolver := credits.NewResolver(store)
	explorer := credits.NewExplorer(store, resolver, cfg.QueryLimit)

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("dataset", cfg.DatasetID).
		Bool("authenticated", cfg.AppToken != "").
		Msg("upstream configured")

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Credits: explorer,
		},
	})

	return api.Start()
}
