// Package stats computes descriptive statistics over a column of an
// already-open dataset, the same summaries the original toolkit's
// stat-style companion command produced, rebuilt here on gonum/stat
// rather than hand-rolled accumulation.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rtsoliday/sds"
)

// Summary holds the descriptive statistics of one numeric column over
// the current page.
type Summary struct {
	Name    string
	N       int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	Median  float64
}

// Column computes Summary for the named column of ds's current page.
// Non-numeric columns fail with sds's TypeMismatch kind (checked with
// IsNumeric, so TString/TChar columns are rejected); values are read
// through Dataset.ColumnFloat64s.
func Column(ds *sds.Dataset, name string) (Summary, error) {
	idx, ok := ds.Layout().IndexOfColumn(name)
	if !ok {
		return Summary{}, &sds.Error{Kind: sds.BadTarget, Op: "stats.Column", Msg: "unknown column " + name}
	}
	col := ds.Layout().Columns[idx]
	if !col.Type.IsNumeric() {
		return Summary{}, &sds.Error{Kind: sds.TypeMismatch, Op: "stats.Column", Msg: "column " + name + " is not numeric"}
	}
	values, err := ds.ColumnFloat64s(idx)
	if err != nil {
		return Summary{}, err
	}
	if len(values) == 0 {
		return Summary{Name: name}, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(values, nil)
	return Summary{
		Name:   name,
		N:      len(values),
		Mean:   mean,
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}, nil
}
