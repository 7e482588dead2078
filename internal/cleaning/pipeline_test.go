package cleaning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func customers() Dataset {
	return Dataset{
		Columns: []string{"name", "email", "phone", "signup", "amount"},
		Rows: []Row{
			{"name": " Ann ", "email": "ann@gmial.com", "phone": "06 12 34 56 78", "signup": "31/12/2023", "amount": "10"},
			{"name": "Bob", "email": "BOB@x.com", "phone": "", "signup": "2023-13-45", "amount": ""},
			{"name": "Ann", "email": "ann@gmail.com", "phone": "+33612345678", "signup": "2023-12-31", "amount": "10"},
			{"name": "Cid", "email": "nope", "phone": "0612345679", "signup": "", "amount": "20"},
			{"name": "Dee", "email": "dee@x.com", "phone": "0612345670", "signup": "2024-01-05", "amount": "30"},
		},
	}
}

func TestCleanNormalizesAndFlags(t *testing.T) {
	ds := customers()
	rep, err := NewPipeline(zaptest.NewLogger(t)).Run(ds, nil, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ColumnTypeMap{
		"name": TypeText, "email": TypeEmail, "phone": TypePhone, "signup": TypeDate, "amount": TypeNumber,
	}, rep.Types)

	p := rep.Proposal
	assert.Equal(t, "Ann", *p[0]["name"])
	assert.Equal(t, "ann@gmail.com", *p[0]["email"])
	assert.Equal(t, "+33612345678", *p[0]["phone"])
	assert.Equal(t, "2023-12-31", *p[0]["signup"])
	assert.Equal(t, "bob@x.com", *p[1]["email"])
	assert.Nil(t, p[1]["phone"])
	assert.Equal(t, "2023-13-45", *p[1]["signup"])
	assert.Equal(t, "nope", *p[3]["email"])

	assert.Equal(t, 7, rep.Stats.Corrections)
	assert.Equal(t, 2, rep.Stats.Invalids)
	assert.Equal(t, 3, rep.Stats.Missing)
	assert.Len(t, rep.Diffs, 9)
	assert.True(t, rep.Invalid.Has("email", 3))
	assert.True(t, rep.Invalid.Has("signup", 1))

	assert.Equal(t, DuplicateSet{2}, rep.Duplicates, "row 2 matches row 0 once normalized")
	assert.Len(t, rep.Final, 5, "duplicates are kept unless removal is requested")

	// input is left untouched
	assert.Equal(t, " Ann ", ds.Rows[0]["name"])
}

func TestCleanMissingAndInvalidAreDisjoint(t *testing.T) {
	rep, err := Clean(customers(), nil, DefaultOptions())
	require.NoError(t, err)
	for _, c := range rep.Invalid.Columns() {
		for _, row := range rep.Invalid[c] {
			assert.NotNil(t, rep.Proposal[row][c], "%s row %d", c, row)
		}
	}
}

func TestCleanRecordsBlankCellsClearedToNull(t *testing.T) {
	ds := Dataset{
		Columns: []string{"name", "email"},
		Rows: []Row{
			{"name": "   ", "email": "  "},
			{"name": "Bob", "email": "bob@x.com"},
		},
	}
	rep, err := Clean(ds, nil, DefaultOptions())
	require.NoError(t, err)

	assert.Nil(t, rep.Proposal[0]["name"])
	assert.Nil(t, rep.Proposal[0]["email"])
	assert.Equal(t, 2, rep.Stats.Missing)
	assert.Equal(t, 2, rep.Stats.Corrections)
	require.Len(t, rep.Diffs, 2)
	assert.Equal(t, DiffEntry{Row: 0, Column: "name", Before: strPtr("   "), Rule: RuleTrim, Confidence: RuleTrim.Confidence()}, rep.Diffs[0])
	assert.Equal(t, "email", rep.Diffs[1].Column)
	assert.Nil(t, rep.Diffs[1].After)

	again, err := Clean(rep.Dataset(), nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, again.Diffs, "empty cells are not re-recorded")
}

func TestCleanImputeAndRemoveDuplicates(t *testing.T) {
	opt := DefaultOptions()
	opt.ImputeMissing = true
	opt.RemoveDuplicates = true
	rep, err := Clean(customers(), nil, opt)
	require.NoError(t, err)

	p := rep.Proposal
	assert.Equal(t, "15", *p[1]["amount"])
	assert.Equal(t, "+33612345678", *p[1]["phone"])
	assert.Equal(t, "2023-12-31", *p[1]["signup"])
	assert.Equal(t, "ann@gmail.com", *p[3]["email"])

	assert.Equal(t, 5, rep.Stats.Imputed)
	assert.Zero(t, rep.Stats.Missing)
	assert.Zero(t, rep.Stats.Invalids)
	assert.Len(t, rep.Diffs, 14)

	assert.Equal(t, DuplicateSet{2}, rep.Duplicates)
	require.Len(t, rep.Final, 4)
	assert.Equal(t, "Cid", *rep.Final[2]["name"])

	assert.Equal(t, 97, rep.ScoreAfter)
	assert.Equal(t, 88, rep.ScoreBefore)
	assert.InDelta(t, 0.8, rep.After.Uniqueness, 1e-9)
}

func TestCleanBeforeUnknownPolicy(t *testing.T) {
	opt := DefaultOptions()
	opt.BeforePolicy = BeforeUnknown
	rep, err := Clean(customers(), nil, opt)
	require.NoError(t, err)
	assert.Zero(t, rep.Before.Validity)
	assert.Zero(t, rep.Before.Consistency)
	assert.Zero(t, rep.Before.OutliersOK)
	assert.Equal(t, 37, rep.ScoreBefore)
}

func TestCleanIsIdempotent(t *testing.T) {
	first, err := Clean(customers(), nil, DefaultOptions())
	require.NoError(t, err)
	second, err := Clean(first.Dataset(), first.Types, DefaultOptions())
	require.NoError(t, err)

	var flags []DiffEntry
	for _, d := range first.Diffs {
		if d.Rule.IsFlag() {
			flags = append(flags, d)
		}
	}
	assert.Equal(t, flags, second.Diffs)
	assert.Zero(t, second.Stats.Corrections)
}

func TestCleanEmptyDataset(t *testing.T) {
	rep, err := Clean(Dataset{}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 100, rep.ScoreBefore)
	assert.Equal(t, 100, rep.ScoreAfter)
	assert.Equal(t, QualityMetrics{1, 1, 1, 1, 1}, rep.After)
}

func TestCleanOutliers(t *testing.T) {
	ds := Dataset{Columns: []string{"price"}}
	for _, v := range []string{"1", "2", "3", "4", "5", "6", "100"} {
		ds.Rows = append(ds.Rows, Row{"price": v})
	}
	rep, err := Clean(ds, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, ColumnIndex{"price": {6}}, rep.Outliers)
	assert.Less(t, rep.After.OutliersOK, 1.0)
}

func TestCleanFuzzyPairs(t *testing.T) {
	opt := DefaultOptions()
	opt.FuzzyKeys = []string{"name"}
	opt.FuzzyThreshold = 100
	rep, err := Clean(customers(), nil, opt)
	require.NoError(t, err)
	assert.Equal(t, []FuzzyPair{{I: 0, J: 2, Score: 100}}, rep.FuzzyPairs)
}

func TestCleanRejectsMalformedDataset(t *testing.T) {
	ds := Dataset{
		Columns: []string{"a", "b"},
		Rows:    []Row{{"a": "1", "b": "2"}, {"a": "1"}},
	}
	_, err := Clean(ds, nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedDataset))

	_, err = Clean(Dataset{Columns: []string{"a", "a"}}, nil, DefaultOptions())
	assert.True(t, errors.Is(err, ErrMalformedDataset))

	_, err = Clean(Dataset{Columns: []string{"a"}, Rows: []Row{{"b": "x"}}}, nil, DefaultOptions())
	assert.True(t, errors.Is(err, ErrMalformedDataset))
}

func TestCleanRejectsInvalidOptions(t *testing.T) {
	cases := map[string]func(*Options){
		"country":   func(o *Options) { o.DefaultCountry = "FRA" },
		"threshold": func(o *Options) { o.FuzzyThreshold = 120 },
		"fuzzy key": func(o *Options) { o.FuzzyKeys = []string{"nope"} },
		"policy":    func(o *Options) { o.BeforePolicy = "guess" },
	}
	for name, mut := range cases {
		opt := DefaultOptions()
		mut(&opt)
		_, err := Clean(customers(), nil, opt)
		assert.True(t, errors.Is(err, ErrInvalidOptions), name)
	}

	_, err := Clean(customers(), ColumnTypeMap{"ghost": TypeText}, DefaultOptions())
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestCleanTypeOverride(t *testing.T) {
	rep, err := Clean(customers(), ColumnTypeMap{"amount": TypeText}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, TypeText, rep.Types["amount"])
	assert.Empty(t, rep.Outliers)
}

func TestReportMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.FuzzyKeys = []string{"name"}
	opt.FuzzyThreshold = 100
	rep, err := Clean(customers(), nil, opt)
	require.NoError(t, err)

	md := rep.Markdown()
	for _, section := range []string{"[CLEANING SUMMARY]", "[QUALITY]", "[COLUMNS]", "[DUPLICATES]", "[FUZZY PAIRS]", "[SAMPLE CHANGES]"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "- email: email; invalid 1")
	assert.Contains(t, md, "email_fix")
}
