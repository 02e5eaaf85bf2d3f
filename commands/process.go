package commands

import (
	"github.com/spf13/cobra"

	"carlist-scraper/config"
	"carlist-scraper/services"
	"carlist-scraper/storage"
)

var processTop int

func init() {
	processCmd.Flags().IntVar(&processTop, "top", 10, "rows to show in the ranking report")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Re-runs value enrichment on the latest saved table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := config.LoadParams(cfg.ParamsPath)
		if err != nil {
			return err
		}
		return enrichAndReport(cmd, params, storage.NewCSVStore(cfg.DataDir), processTop)
	},
}

// enrichAndReport processes the newest table in store and prints the
// ranking. A data directory without tables is an error.
func enrichAndReport(cmd *cobra.Command, params *config.Params, store storage.TableLocator, top int) error {
	enricher := services.NewEnricher(params, cfg.LifespanYears, logger.With("enrich"))
	processed, err := enricher.ProcessLatest(store)
	if err != nil {
		return err
	}

	services.PrintReport(cmd.OutOrStdout(), services.BuildReport(processed, top))
	return nil
}
