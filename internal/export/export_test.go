package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []cleaning.ProposalRow{
		{"a": sp("1"), "b": nil},
		{"a": sp("x,y"), "b": sp("z")},
	}
	require.NoError(t, WriteCSV(&buf, []string{"a", "b"}, rows))
	assert.Equal(t, "a,b\n1,\n\"x,y\",z\n", buf.String())
}

func TestWriteAuditCSV(t *testing.T) {
	var buf bytes.Buffer
	diffs := []cleaning.DiffEntry{
		{Row: 0, Column: "email", Before: sp("A@GMIAL.com"), After: sp("a@gmail.com"), Rule: cleaning.RuleEmailFix, Confidence: 0.95},
		{Row: 3, Column: "amount", Before: nil, After: sp("20"), Rule: cleaning.RuleImputeMedian, Confidence: 0.85},
	}
	require.NoError(t, WriteAuditCSV(&buf, diffs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "row,column,before,after,rule,confidence", lines[0])
	assert.Equal(t, "0,email,A@GMIAL.com,a@gmail.com,email_fix,0.95", lines[1])
	assert.Equal(t, "3,amount,,20,impute_median,0.85", lines[2])
}

func TestWriteAuditJSONL(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	diffs := []cleaning.DiffEntry{
		{Row: 1, Column: "d", Before: sp("bad"), After: sp("bad"), Rule: cleaning.RuleInvalidDate, Confidence: 0.5},
		{Row: 2, Column: "n", Before: nil, After: sp("3"), Rule: cleaning.RuleImputeMedian, Confidence: 0.85},
	}
	require.NoError(t, WriteAuditJSONL(&buf, diffs, ts))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
	assert.Equal(t, float64(2), got["row"])
	assert.Nil(t, got["old_value"])
	assert.Equal(t, "3", got["new_value"])
	assert.Equal(t, "impute_median", got["rule"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["ts"])
}

func TestWriteReportJSON(t *testing.T) {
	ds := cleaning.Dataset{Columns: []string{"email"}, Rows: []cleaning.Row{{"email": "x@gmial.com"}}}
	rep, err := cleaning.Clean(ds, nil, cleaning.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReportJSON(&buf, rep))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(100), got["score_after"])
	assert.Contains(t, got, "diffs")
	assert.Contains(t, got, "stats")
}
