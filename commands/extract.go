package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"carlist-scraper/models"
	"carlist-scraper/scraper/sgcarmart"
	"carlist-scraper/utils"
)

var extractHTML string

func init() {
	extractCmd.Flags().StringVar(&extractHTML, "html", "", "parse a saved listing page instead of fetching the URL")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extracts the details of a single listing and prints them.",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var url string
		if len(args) == 1 {
			url = args[0]
		}

		var rec models.CarRecord
		switch {
		case extractHTML != "":
			data, err := os.ReadFile(extractHTML)
			if err != nil {
				return utils.NewError(utils.KindConfig, "read html", err)
			}
			rec = sgcarmart.ParseListing(url, string(data))
		case url != "":
			var err error
			rec, err = sgcarmart.NewExtractor(cfg.HTTPTimeout, logger.With("extractor")).Extract(cmd.Context(), url)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("either a listing URL or --html is required")
		}

		printRecord(cmd.OutOrStdout(), rec)
		return nil
	},
}

func printRecord(w io.Writer, rec models.CarRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, k := range models.OrderedKeys(rec) {
		t.AppendRow(table.Row{k, rec[k]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(w, "%d/%d fields", rec.Populated(), len(models.CanonicalFields))
	if missing := rec.Missing(); len(missing) > 0 {
		fmt.Fprintf(w, ", missing: %s", strings.Join(missing, ", "))
	}
	fmt.Fprintln(w)
}
