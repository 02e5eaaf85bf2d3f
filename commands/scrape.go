package commands

import (
	"bufio"
	"errors"

	"github.com/spf13/cobra"

	"carlist-scraper/config"
	"carlist-scraper/scraper/sgcarmart"
	"carlist-scraper/services"
	"carlist-scraper/storage"
	"carlist-scraper/utils"
)

var (
	scrapeURL   string
	scrapePages int
	scrapeTop   int
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "listing search URL to start from (overrides START_URL)")
	scrapeCmd.Flags().IntVar(&scrapePages, "pages", 0, "maximum number of result pages to crawl (overrides MAX_PAGES)")
	scrapeCmd.Flags().IntVar(&scrapeTop, "top", 10, "rows to show in the ranking report")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Crawls a search, extracts every listing, then processes and ranks the table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := config.LoadParams(cfg.ParamsPath)
		if err != nil {
			return err
		}

		startURL, pages, err := scrapeTarget(cmd)
		if err != nil {
			return err
		}

		store := storage.NewCSVStore(cfg.DataDir)

		logger.Info("=== carlist scrape starting ===")
		logger.Info("Config: pages %d | retries %d | retry delay %v | wait %v | data dir %s",
			pages, cfg.MaxRetries, cfg.RetryDelay(), cfg.WaitTimeout, store.Dir())

		collector := sgcarmart.NewCollector(
			sgcarmart.ChromeOpener(sgcarmart.BrowserOptions{Headless: cfg.Headless, ChromeBin: cfg.ChromeBin}),
			cfg.WaitTimeout,
			logger.With("collector"),
		)
		extractor := sgcarmart.NewExtractor(cfg.HTTPTimeout, logger.With("extractor"))
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, Delay: cfg.RetryDelay(), Logger: logger}

		harvester := services.NewHarvester(collector, extractor, store, retry, logger.With("harvester"))
		summary, err := harvester.Run(cmd.Context(), startURL, pages)
		if err != nil {
			return err
		}
		if summary.TablePath != "" {
			logger.Info("Listings saved to %s", summary.TablePath)
		}

		return enrichAndReport(cmd, params, store, scrapeTop)
	},
}

// scrapeTarget resolves the start URL and page budget from flags, then the
// environment, then interactive prompts.
func scrapeTarget(cmd *cobra.Command) (string, int, error) {
	startURL := scrapeURL
	if startURL == "" {
		startURL = cfg.StartURL
	}
	pages := scrapePages
	if pages <= 0 && cmd.Flags().Changed("pages") {
		return "", 0, utils.NewError(utils.KindConfig, "read page count", errors.New("--pages must be positive"))
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if startURL == "" {
		var err error
		startURL, err = promptLine(in, cmd.OutOrStdout(), "Enter the URL to scrape: ")
		if err != nil {
			return "", 0, err
		}
		if startURL == "" {
			return "", 0, utils.NewError(utils.KindConfig, "read start URL", errors.New("no URL given"))
		}
		if pages <= 0 {
			if pages, err = promptPages(in, cmd.OutOrStdout(), cfg.MaxPages); err != nil {
				return "", 0, err
			}
		}
	}
	if pages <= 0 {
		pages = cfg.MaxPages
	}
	return startURL, pages, nil
}
