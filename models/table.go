package models

// Derived column names written by value enrichment.
const (
	ColYearsMonthsLeft         = "years_months_left"
	ColARFVal                  = "ARF_val"
	ColDeregValAt10y           = "dereg_val_at_10y"
	ColPQPEst10y               = "pqp_est_10y"
	ColPQPEst5y                = "pqp_est_5y"
	ColExtendNetValue10y       = "extend_net_value_10y"
	ColExtendNetValue5y        = "extend_net_value_5y"
	ColCostMinusDereg          = "cost_minus_dereg"
	ColMonthlyConsumptionWorth = "monthly_consumption_worth"

	// Expired marks a registration whose lifespan has run out.
	Expired = "Expired"
)

// DerivedColumns lists the enrichment columns in output order.
var DerivedColumns = []string{
	ColYearsMonthsLeft, ColARFVal, ColDeregValAt10y, ColPQPEst10y,
	ColPQPEst5y, ColExtendNetValue10y, ColExtendNetValue5y,
	ColCostMinusDereg, ColMonthlyConsumptionWorth,
}

// CarTable is an ordered set of records with a fixed column order.
type CarTable struct {
	Columns []string
	Rows    []CarRecord
}

// Row renders record i in column order.
func (t *CarTable) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = t.Rows[i][c]
	}
	return out
}

// EnsureColumns appends any keys of rec not yet present as columns,
// keeping existing order first and adding new keys in canonical order
// followed by the rest alphabetically.
func (t *CarTable) EnsureColumns(rec CarRecord) {
	have := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = struct{}{}
	}
	for _, k := range OrderedKeys(rec) {
		if _, ok := have[k]; !ok {
			t.Columns = append(t.Columns, k)
			have[k] = struct{}{}
		}
	}
}

// ProcessedTable is a CarTable carrying the enrichment columns.
type ProcessedTable struct {
	CarTable
	Source string
}
