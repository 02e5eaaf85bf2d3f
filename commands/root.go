package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carlist-scraper/config"
	"carlist-scraper/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:           "carlist",
	Short:         "carlist scrapes sgcarmart used-car listings and ranks them by depreciation value.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding carlist_*.csv tables (overrides DATA_DIR)")
	rootCmd.PersistentFlags().String("params", "", "path to the PQP parameter file (overrides PARAMS_PATH)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
			cfg.DataDir = v
		}
		if v, _ := cmd.Flags().GetString("params"); v != "" {
			cfg.ParamsPath = v
		}
	}
}

// ExecuteContext runs the command line with the given configuration.
func ExecuteContext(ctx context.Context, c *config.Config, l *utils.Logger) error {
	cfg = c
	logger = l
	return rootCmd.ExecuteContext(ctx)
}

// promptLine prints label and returns the next trimmed line from in.
func promptLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %q: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPages asks for a page count, falling back to def on empty input.
func promptPages(in *bufio.Reader, out io.Writer, def int) (int, error) {
	s, err := promptLine(in, out, fmt.Sprintf("Number of pages to scrape [%d]: ", def))
	if err != nil {
		return 0, err
	}
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, utils.NewError(utils.KindConfig, "read page count", fmt.Errorf("%q is not a positive number", s))
	}
	return n, nil
}
