package cleaning

import (
	"math"
	"sort"
)

// minOutlierValues is the smallest sample the IQR test runs on.
const minOutlierValues = 5

// IndexedValue is a parsed numeric cell and the row it came from.
type IndexedValue struct {
	Row   int
	Value float64
}

// IQRBounds returns the 1.5*IQR fences for an ascending sample.
// Quartiles are taken at floor(0.25n) and floor(0.75n).
func IQRBounds(sorted []float64) (lo, hi float64) {
	n := len(sorted)
	if n == 0 {
		return math.Inf(-1), math.Inf(1)
	}
	q1 := sorted[int(math.Floor(0.25*float64(n)))]
	q3 := sorted[int(math.Floor(0.75*float64(n)))]
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// DetectOutliers returns, ascending, the rows whose value lies strictly outside the IQR fences.
func DetectOutliers(values []IndexedValue) []int {
	if len(values) < minOutlierValues {
		return nil
	}
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = v.Value
	}
	sort.Float64s(sorted)
	lo, hi := IQRBounds(sorted)
	var out []int
	for _, v := range values {
		if v.Value < lo || v.Value > hi {
			out = append(out, v.Row)
		}
	}
	sort.Ints(out)
	return out
}

// numericValues collects the parseable cells of col from a proposal, skipping rows in skip.
func numericValues(rows []ProposalRow, col string, skip ColumnIndex) []IndexedValue {
	var out []IndexedValue
	for i, r := range rows {
		p := r[col]
		if p == nil || skip.Has(col, i) {
			continue
		}
		if f, ok := parseNumber(*p); ok {
			out = append(out, IndexedValue{Row: i, Value: f})
		}
	}
	return out
}
