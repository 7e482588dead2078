package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImputeMedian(t *testing.T) {
	rows := []ProposalRow{prow("n", "10"), prow("n", "<nil>"), prow("n", "20"), prow("n", "30")}
	rec := &Recorder{}
	st := Impute(rows, []string{"n"}, ColumnTypeMap{"n": TypeNumber}, ColumnIndex{}, rec)

	assert.Equal(t, ImputeStats{Imputed: 1, FromMissing: 1}, st)
	require.NotNil(t, rows[1]["n"])
	assert.Equal(t, "20", *rows[1]["n"])

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, RuleImputeMedian, entries[0].Rule)
	assert.Nil(t, entries[0].Before)
	assert.InDelta(t, 0.85, entries[0].Confidence, 1e-9)
}

func TestImputeMedianEvenAndInvalid(t *testing.T) {
	rows := []ProposalRow{prow("n", "1"), prow("n", "oops"), prow("n", "2"), prow("n", "5"), prow("n", "10")}
	invalid := ColumnIndex{}
	invalid.add("n", 1)
	st := Impute(rows, []string{"n"}, ColumnTypeMap{"n": TypeNumber}, invalid, &Recorder{})

	assert.Equal(t, 1, st.FromInvalid)
	assert.Equal(t, "3.5", *rows[1]["n"])
	assert.Equal(t, 0, invalid.Count(), "imputed cells leave the invalid index")
}

func TestImputeMode(t *testing.T) {
	rows := []ProposalRow{
		prow("city", "Paris"), prow("city", "Lyon"), prow("city", "<nil>"),
		prow("city", "Lyon"), prow("city", "Paris"), prow("city", ""),
	}
	rec := &Recorder{}
	st := Impute(rows, []string{"city"}, ColumnTypeMap{"city": TypeText}, ColumnIndex{}, rec)

	assert.Equal(t, 1, st.Imputed)
	assert.Equal(t, "Paris", *rows[2]["city"], "ties go to the first value seen")
	assert.Equal(t, RuleImputeMode, rec.Entries()[0].Rule)
}

func TestImputeSkipsColumnWithoutValidValues(t *testing.T) {
	rows := []ProposalRow{prow("d", "<nil>"), prow("d", "bad")}
	invalid := ColumnIndex{"d": {1}}
	st := Impute(rows, []string{"d"}, ColumnTypeMap{"d": TypeDate}, invalid, &Recorder{})

	assert.Zero(t, st.Imputed)
	assert.Nil(t, rows[0]["d"])
	assert.True(t, invalid.Has("d", 1))
}
