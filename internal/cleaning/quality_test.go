package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyInput(t *testing.T) {
	m := Score(QualityInput{})
	assert.Equal(t, QualityMetrics{1, 1, 1, 1, 1}, m)
	assert.Equal(t, 100, m.Score())
}

func TestScoreDimensions(t *testing.T) {
	in := QualityInput{
		RowCount:       4,
		Columns:        []string{"a", "b"},
		Missing:        2,
		Invalid:        ColumnIndex{"a": {0}},
		Duplicates:     1,
		NumericColumns: []string{"b"},
		Outliers:       ColumnIndex{"b": {3}},
	}
	m := Score(in)
	assert.InDelta(t, 0.75, m.Completeness, 1e-9)
	assert.InDelta(t, 0.875, m.Validity, 1e-9)
	assert.InDelta(t, 0.75, m.Uniqueness, 1e-9)
	assert.InDelta(t, 0.5, m.Consistency, 1e-9)
	assert.InDelta(t, 0.75, m.OutliersOK, 1e-9)
	// 0.35*0.875 + 0.25*0.75 + 0.15*0.75 + 0.15*0.5 + 0.10*0.75 = 0.75625
	assert.Equal(t, 76, m.Score())
}

func TestScoreIsClamped(t *testing.T) {
	assert.Equal(t, 0, QualityMetrics{}.Score())
	assert.Equal(t, 100, QualityMetrics{2, 2, 2, 2, 2}.Score())
	assert.Equal(t, 0, QualityMetrics{-1, -1, -1, -1, -1}.Score())
}
