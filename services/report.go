package services

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"carlist-scraper/models"
)

// RankingReport summarises a processed table.
type RankingReport struct {
	Source  string
	Total   int
	Expired int
	Valued  int
	Top     []models.CarRecord
}

// BuildReport takes the first topN valued rows of a processed table, which
// is already sorted by 10-year net value.
func BuildReport(t *models.ProcessedTable, topN int) *RankingReport {
	r := &RankingReport{Source: t.Source, Total: len(t.Rows)}
	for _, row := range t.Rows {
		if row.Get(models.ColYearsMonthsLeft) == models.Expired {
			r.Expired++
		}
		if math.IsNaN(parseNumber(row.Get(models.ColExtendNetValue10y))) {
			continue
		}
		r.Valued++
		if len(r.Top) < topN {
			r.Top = append(r.Top, row)
		}
	}
	return r
}

// PrintReport renders r to w.
func PrintReport(w io.Writer, r *RankingReport) {
	fmt.Fprintf(w, "\nTop %d listings by 10-year net value (%s)\n", len(r.Top), r.Source)
	fmt.Fprintf(w, "Total: %d | Valued: %d | Expired: %d\n", r.Total, r.Valued, r.Expired)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Model", "Price", "Reg date", "Left", "Net 10y", "Net 5y", "Monthly"})
	for i, row := range r.Top {
		t.AppendRow(table.Row{
			i + 1,
			truncate(row.Get(models.FieldCarModel), 40),
			row.Get(models.FieldPrice),
			row.Get(models.FieldRegDate),
			row.Get(models.ColYearsMonthsLeft),
			row.Get(models.ColExtendNetValue10y),
			row.Get(models.ColExtendNetValue5y),
			money(row.Get(models.ColMonthlyConsumptionWorth)),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func money(s string) string {
	v := parseNumber(s)
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
