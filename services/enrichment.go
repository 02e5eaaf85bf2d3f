package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"carlist-scraper/config"
	"carlist-scraper/models"
	"carlist-scraper/storage"
	"carlist-scraper/utils"
)

var (
	moneyRegexp      = regexp.MustCompile(`[^0-9.]`)
	monthsLeftRegexp = regexp.MustCompile(`^(\d+) yr (\d+) mth$`)
)

// regDateLayouts pin down the day-first shapes the site uses, including
// two-digit years, before dateparse handles anything else.
var regDateLayouts = []string{
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 Jan 06",
	"2 Jan 06",
	"02-January-2006",
	"2 January 2006",
	"2 January, 2006",
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"02-01-2006",
	"2-1-2006",
	"02-01-06",
	"02.01.2006",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
}

// Enricher derives value metrics from a raw CarTable.
type Enricher struct {
	pqp           config.PQPCategory
	lifespanYears int
	now           func() time.Time
	logger        *utils.Logger
}

// NewEnricher creates an Enricher using the default PQP category of params.
func NewEnricher(params *config.Params, lifespanYears int, logger *utils.Logger) *Enricher {
	if lifespanYears <= 0 {
		lifespanYears = 10
	}
	return &Enricher{
		pqp:           params.Default(),
		lifespanYears: lifespanYears,
		now:           time.Now,
		logger:        logger,
	}
}

// WithClock overrides the clock that defines "today".
func (e *Enricher) WithClock(now func() time.Time) *Enricher {
	e.now = now
	return e
}

// ProcessLatest enriches the newest table known to locator and writes the
// result next to it.
func (e *Enricher) ProcessLatest(locator storage.TableLocator) (*models.ProcessedTable, error) {
	path, err := locator.LatestTable()
	if err != nil {
		return nil, err
	}
	e.logger.Info("[enrich] Processing %s", path)

	table, err := storage.LoadTable(path)
	if err != nil {
		return nil, err
	}

	processed := e.Process(table)
	processed.Source = path

	out := storage.ProcessedPath(path)
	if err := storage.WriteTable(out, &processed.CarTable); err != nil {
		return nil, err
	}
	e.logger.Info("[enrich] Processed data saved to %s (%d rows, duplicates removed)", out, len(processed.Rows))
	return processed, nil
}

// Process drops rows without a transmission, computes the derived columns,
// sorts by 10-year net value (highest first, missing last) and removes
// exact duplicate rows.
func (e *Enricher) Process(table *models.CarTable) *models.ProcessedTable {
	today := dateOnly(e.now())

	columns := append([]string(nil), table.Columns...)
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	for _, c := range models.DerivedColumns {
		if _, ok := have[c]; !ok {
			columns = append(columns, c)
		}
	}

	type scored struct {
		rec   models.CarRecord
		net10 float64
	}
	rows := make([]scored, 0, len(table.Rows))
	dropped := 0

	for _, src := range table.Rows {
		if strings.TrimSpace(src.Get(models.FieldTransmission)) == "" {
			dropped++
			continue
		}

		rec := make(models.CarRecord, len(src)+len(models.DerivedColumns))
		for k, v := range src {
			rec[k] = v
		}
		for _, c := range models.DerivedColumns {
			delete(rec, c)
		}

		regDate, ok := ParseRegDate(src.Get(models.FieldRegDate))
		delete(rec, models.FieldRegDate)
		left := ""
		if ok {
			rec[models.FieldRegDate] = regDate.Format("2006-01-02")
			left = YearsMonthsLeft(regDate, today, e.lifespanYears)
		}
		rec.Set(models.ColYearsMonthsLeft, left)

		arf := ParseMoney(src.Get(models.FieldARF))
		dereg := math.RoundToEven(arf * 0.5)
		net10 := dereg - e.pqp.TenYear
		net5 := dereg - e.pqp.FiveYear
		costMinusDereg := ParseMoney(src.Get(models.FieldPrice)) - dereg

		rec.Set(models.ColARFVal, formatNumber(arf))
		rec.Set(models.ColDeregValAt10y, formatNumber(dereg))
		rec.Set(models.ColPQPEst10y, formatNumber(e.pqp.TenYear))
		rec.Set(models.ColPQPEst5y, formatNumber(e.pqp.FiveYear))
		rec.Set(models.ColExtendNetValue10y, formatNumber(net10))
		rec.Set(models.ColExtendNetValue5y, formatNumber(net5))
		rec.Set(models.ColCostMinusDereg, formatNumber(costMinusDereg))
		rec.Set(models.ColMonthlyConsumptionWorth, formatNumber(monthlyWorth(costMinusDereg, left)))

		rows = append(rows, scored{rec: rec, net10: net10})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].net10, rows[j].net10
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		return a > b
	})

	out := &models.ProcessedTable{CarTable: models.CarTable{Columns: columns}}
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		key := rowKey(columns, r.rec)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, r.rec)
	}

	e.logger.Debug("[enrich] %d rows in, %d without transmission, %d duplicates, %d out",
		len(table.Rows), dropped, len(rows)-len(out.Rows), len(out.Rows))
	return out
}

// ParseRegDate parses a registration date written in any common format,
// reading ambiguous numeric dates day first. Unparseable input reports
// false.
func ParseRegDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range regDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

// YearsMonthsLeft renders the time remaining until regDate plus lifespan
// years as "Y yr M mth" using 365-day years and 30-day months, or Expired
// once that moment is today or past.
func YearsMonthsLeft(regDate, today time.Time, lifespanYears int) string {
	end := addYears(dateOnly(regDate), lifespanYears)
	days := int(end.Sub(dateOnly(today)).Hours() / 24)
	if days <= 0 {
		return models.Expired
	}
	return fmt.Sprintf("%d yr %d mth", days/365, (days%365)/30)
}

// MonthsLeft converts a YearsMonthsLeft string back to months.
func MonthsLeft(s string) (int, bool) {
	m := monthsLeftRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	years, _ := strconv.Atoi(m[1])
	months, _ := strconv.Atoi(m[2])
	return years*12 + months, true
}

// ParseMoney keeps only digits and decimal points and parses the rest.
// Empty or malformed input yields NaN.
func ParseMoney(s string) float64 {
	digits := moneyRegexp.ReplaceAllString(s, "")
	if digits == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func monthlyWorth(costMinusDereg float64, left string) float64 {
	months, ok := MonthsLeft(left)
	if !ok || months == 0 {
		return math.NaN()
	}
	return costMinusDereg / float64(months)
}

// addYears adds whole years, clamping 29 February to the 28th like a
// calendar offset rather than rolling into March.
func addYears(t time.Time, years int) time.Time {
	out := t.AddDate(years, 0, 0)
	if out.Day() != t.Day() {
		out = out.AddDate(0, 0, -out.Day())
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rowKey(columns []string, rec models.CarRecord) string {
	var b strings.Builder
	for _, c := range columns {
		b.WriteString(rec[c])
		b.WriteByte(0x1f)
	}
	return b.String()
}
