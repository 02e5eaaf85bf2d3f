package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"carlist-scraper/scraper/sgcarmart"
)

var collectPages int

func init() {
	collectCmd.Flags().IntVar(&collectPages, "pages", 0, "maximum number of result pages to crawl (overrides MAX_PAGES)")
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect <url>",
	Short: "Crawls a search and prints the listing links without extracting them.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages := collectPages
		if pages <= 0 {
			pages = cfg.MaxPages
		}

		collector := sgcarmart.NewCollector(
			sgcarmart.ChromeOpener(sgcarmart.BrowserOptions{Headless: cfg.Headless, ChromeBin: cfg.ChromeBin}),
			cfg.WaitTimeout,
			logger.With("collector"),
		)
		links, err := collector.Collect(cmd.Context(), args[0], pages)
		if err != nil {
			return err
		}
		for _, l := range links {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
		return nil
	},
}
