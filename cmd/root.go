package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/filmwaiver/config"
	"sjsage522/filmwaiver/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "filmwaiver",
	Short: "Film festival submission discount service",
	Long: "Serves film festival submission discount codes scraped from FilmFreeway " +
		"(or a built-in static list) over a small JSON API.",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Load environment variables, a missing .env file is fine
	_ = godotenv.Load()

	cfg = config.LoadConfig()
	logger.Init(cfg.IsProduction())
}
