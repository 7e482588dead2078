package cleaning

import "sort"

// ImputeStats counts the cells filled by Impute.
type ImputeStats struct {
	Imputed     int
	FromMissing int
	FromInvalid int
}

// Impute fills missing and invalid cells in place: numeric columns get the median of
// their valid values, other columns the most frequent valid value. Filled invalid cells
// are removed from invalid. Each fill is recorded on rec.
func Impute(rows []ProposalRow, columns []string, types ColumnTypeMap, invalid ColumnIndex, rec *Recorder) ImputeStats {
	var st ImputeStats
	for _, col := range columns {
		numeric := types[col] == TypeNumber
		var fill string
		var ok bool
		if numeric {
			fill, ok = columnMedian(rows, col, invalid)
		} else {
			fill, ok = columnMode(rows, col, invalid)
		}
		if !ok {
			continue
		}
		rule := RuleImputeMode
		if numeric {
			rule = RuleImputeMedian
		}
		for i, r := range rows {
			before := r[col]
			wasInvalid := invalid.Has(col, i)
			if before != nil && !wasInvalid {
				continue
			}
			r[col] = strPtr(fill)
			rec.Record(DiffEntry{Row: i, Column: col, Before: before, After: r[col], Rule: rule})
			st.Imputed++
			if wasInvalid {
				invalid.remove(col, i)
				st.FromInvalid++
			} else {
				st.FromMissing++
			}
		}
	}
	return st
}

func columnMedian(rows []ProposalRow, col string, invalid ColumnIndex) (string, bool) {
	vals := numericValues(rows, col, invalid)
	if len(vals) == 0 {
		return "", false
	}
	fs := make([]float64, len(vals))
	for i, v := range vals {
		fs[i] = v.Value
	}
	sort.Float64s(fs)
	n := len(fs)
	m := fs[n/2]
	if n%2 == 0 {
		m = (fs[n/2-1] + fs[n/2]) / 2
	}
	return formatNumber(m), true
}

// columnMode returns the most frequent valid value; ties go to the first one seen.
func columnMode(rows []ProposalRow, col string, invalid ColumnIndex) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for i, r := range rows {
		p := r[col]
		if p == nil || *p == "" || invalid.Has(col, i) {
			continue
		}
		if counts[*p] == 0 {
			order = append(order, *p)
		}
		counts[*p]++
	}
	best, bestN := "", 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best, bestN > 0
}
