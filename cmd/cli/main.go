package main

import (
	"fmt"
	"os"

	"github.com/de-tools/credit-atlas/pkg/services/config"
	"github.com/de-tools/credit-atlas/pkg/services/credits"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
	"github.com/de-tools/credit-atlas/pkg/terminal/commands"
	"github.com/de-tools/credit-atlas/pkg/terminal/export"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	store := socrata.NewClient(socrata.Config{
		BaseURL:   cfg.BaseURL,
		DatasetID: cfg.DatasetID,
		AppToken:  cfg.AppToken,
	})
	resolver := credits.NewResolver(store)
	explorer := credits.NewExplorer(store, resolver, cfg.QueryLimit)
	reporter := export.NewReporter(os.Stdout)

	rootCmd := &cobra.Command{
		Use:   "credit-atlas",
		Short: "Explore NY tax credit utilization from the terminal",
	}
	rootCmd.AddCommand(commands.NewSummaryCmd(explorer, reporter))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
