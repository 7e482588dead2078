package cleaning

import "math"

// Weights of each quality dimension in the overall score.
const (
	WeightValidity     = 0.35
	WeightCompleteness = 0.25
	WeightUniqueness   = 0.15
	WeightConsistency  = 0.15
	WeightOutliers     = 0.10
)

// QualityMetrics holds the five quality dimensions, each in [0,1].
type QualityMetrics struct {
	Completeness float64 `json:"completeness"`
	Validity     float64 `json:"validity"`
	Uniqueness   float64 `json:"uniqueness"`
	Consistency  float64 `json:"consistency"`
	OutliersOK   float64 `json:"outliers_ok"`
}

// Score combines the dimensions into a 0-100 integer.
func (m QualityMetrics) Score() int {
	s := WeightValidity*m.Validity +
		WeightCompleteness*m.Completeness +
		WeightUniqueness*m.Uniqueness +
		WeightConsistency*m.Consistency +
		WeightOutliers*m.OutliersOK
	v := int(math.Round(100 * s))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// QualityInput carries the statistics the scorer needs.
type QualityInput struct {
	RowCount       int
	Columns        []string
	Missing        int
	Invalid        ColumnIndex
	Duplicates     int
	NumericColumns []string
	Outliers       ColumnIndex
}

// Score computes quality metrics. A zero denominator yields 1 for that dimension.
func Score(in QualityInput) QualityMetrics {
	cells := in.RowCount * len(in.Columns)
	m := QualityMetrics{
		Completeness: 1 - ratio(in.Missing, cells),
		Validity:     1 - ratio(in.Invalid.Count(), cells),
		Uniqueness:   1 - ratio(in.Duplicates, in.RowCount),
		Consistency:  1,
		OutliersOK:   1,
	}
	if len(in.Columns) > 0 {
		consistent := 0
		for _, c := range in.Columns {
			if len(in.Invalid[c]) == 0 {
				consistent++
			}
		}
		m.Consistency = float64(consistent) / float64(len(in.Columns))
	}
	if len(in.NumericColumns) > 0 && in.RowCount > 0 {
		sum := 0.0
		for _, c := range in.NumericColumns {
			sum += 1 - ratio(len(in.Outliers[c]), in.RowCount)
		}
		m.OutliersOK = sum / float64(len(in.NumericColumns))
	}
	return m
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
