package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sjsage522/filmwaiver/config"
	"sjsage522/filmwaiver/internal/extractor"
	"sjsage522/filmwaiver/internal/source"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/services/cache"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch the source page once and print the extracted records",
	Long: "Fetches the discount page, runs the extractor over it and prints the " +
		"records as JSON. Use --dump-html to keep the raw page for inspection.",
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("url", "", "Page to scrape (default from $SOURCE_URL)")
	scrapeCmd.Flags().String("dump-html", "", "Write the fetched HTML to this file")
	scrapeCmd.Flags().String("strategy", "chain", "Extraction strategy: chain, structural or proximity")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if u, _ := cmd.Flags().GetString("url"); u != "" {
		cfg.SourceURL = u
	}
	cfg.DataSource = config.SourceLive
	if err := cfg.Validate(); err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("strategy")
	strategy, err := strategyFor(name, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout)
	defer cancel()

	scraper := source.NewScraper(cfg, cache.New(cfg.MemcacheAddr))
	body, err := scraper.Fetch(ctx)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("dump-html"); path != "" {
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return fmt.Errorf("dump html: %w", err)
		}
		logger.ForFetcher().Info().Str("path", path).Int("bytes", len(body)).Msg("Wrote raw HTML")
	}

	return printRecords(cmd.OutOrStdout(), strategy, string(body))
}

// strategyFor returns the extraction strategy called name
func strategyFor(name string, cfg *config.Config) (extractor.Strategy, error) {
	switch name {
	case "", "chain":
		return extractor.NewChain(cfg.SourceBaseURL, cfg.MinRecords), nil
	case "structural":
		return extractor.NewStructural(cfg.SourceBaseURL), nil
	case "proximity":
		return extractor.NewProximity(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func printRecords(w io.Writer, strategy extractor.Strategy, html string) error {
	records := strategy.Extract(html)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Strategy  string      `json:"strategy"`
		Count     int         `json:"count"`
		Discounts interface{} `json:"discounts"`
	}{
		Strategy:  strategy.Name(),
		Count:     len(records),
		Discounts: records,
	})
}
