package cleaning

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SemanticType is the inferred meaning of a column beyond its raw string form.
type SemanticType string

const (
	TypeText    SemanticType = "text"
	TypeNumber  SemanticType = "number"
	TypeDate    SemanticType = "date"
	TypeEmail   SemanticType = "email"
	TypePhone   SemanticType = "phone"
	TypeUnknown SemanticType = "unknown"
)

// ParseSemanticType maps a case-insensitive name to a SemanticType.
func ParseSemanticType(s string) (SemanticType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string":
		return TypeText, nil
	case "number", "numeric":
		return TypeNumber, nil
	case "date", "datetime":
		return TypeDate, nil
	case "email", "mail":
		return TypeEmail, nil
	case "phone", "tel":
		return TypePhone, nil
	case "unknown":
		return TypeUnknown, nil
	default:
		return "", fmt.Errorf("unknown semantic type %q (use text|number|date|email|phone)", s)
	}
}

var (
	// ErrMalformedDataset is returned when rows do not share the same column set.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrInvalidOptions is returned for options the pipeline cannot honour.
	ErrInvalidOptions = errors.New("invalid cleaning options")
)

// Row maps a column name to its raw value. Empty or whitespace-only values are missing.
type Row map[string]string

// Dataset is an ordered sequence of rows sharing one column set.
type Dataset struct {
	// Columns fixes the column order. If nil, the first row's keys (sorted) are used.
	Columns []string
	Rows    []Row
}

// ColumnTypeMap assigns a semantic type to each column.
type ColumnTypeMap map[string]SemanticType

// ProposalRow holds normalized values; nil means missing.
type ProposalRow map[string]*string

// ColumnIndex maps a column to the ascending row indices flagged for it.
type ColumnIndex map[string][]int

// Count returns the total number of flagged cells.
func (ci ColumnIndex) Count() int {
	n := 0
	for _, rows := range ci {
		n += len(rows)
	}
	return n
}

// Has reports whether row is flagged for col.
func (ci ColumnIndex) Has(col string, row int) bool {
	rows := ci[col]
	i := sort.SearchInts(rows, row)
	return i < len(rows) && rows[i] == row
}

// Columns returns the flagged column names, sorted.
func (ci ColumnIndex) Columns() []string {
	out := make([]string, 0, len(ci))
	for c, rows := range ci {
		if len(rows) > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func (ci ColumnIndex) add(col string, row int) {
	ci[col] = append(ci[col], row)
}

func (ci ColumnIndex) remove(col string, row int) bool {
	rows := ci[col]
	i := sort.SearchInts(rows, row)
	if i >= len(rows) || rows[i] != row {
		return false
	}
	rows = append(rows[:i], rows[i+1:]...)
	if len(rows) == 0 {
		delete(ci, col)
	} else {
		ci[col] = rows
	}
	return true
}

// DuplicateSet lists, in ascending order, rows duplicating an earlier row.
type DuplicateSet []int

// Contains reports whether row is a duplicate.
func (d DuplicateSet) Contains(row int) bool {
	i := sort.SearchInts(d, row)
	return i < len(d) && d[i] == row
}

// FuzzyPair is a pair of near-duplicate rows with a 0-100 similarity score.
type FuzzyPair struct {
	I     int `json:"i"`
	J     int `json:"j"`
	Score int `json:"score"`
}

// BeforePolicy selects how the pre-cleaning quality score is computed.
type BeforePolicy string

const (
	// BeforeMeasured scores the raw dataset with the same scorer used after cleaning.
	BeforeMeasured BeforePolicy = "measured"
	// BeforeUnknown treats validity, consistency and outliers as unknown (zero) before analysis.
	BeforeUnknown BeforePolicy = "unknown"
)

// Options controls a cleaning run.
type Options struct {
	ImputeMissing    bool
	RemoveDuplicates bool
	// DefaultCountry is the ISO 3166 alpha-2 region used to parse national phone numbers.
	DefaultCountry string
	// Fuzzy dedup runs only when FuzzyKeys is non-empty.
	FuzzyKeys      []string
	FuzzyThreshold int
	FuzzySample    int
	BeforePolicy   BeforePolicy
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		DefaultCountry: "FR",
		FuzzyThreshold: 90,
		FuzzySample:    DefaultFuzzySample,
		BeforePolicy:   BeforeMeasured,
	}
}

// Stats are scalar counters describing a run.
type Stats struct {
	RowCount    int `json:"row_count"`
	ColCount    int `json:"col_count"`
	Corrections int `json:"corrections"`
	Duplicates  int `json:"duplicates"`
	Invalids    int `json:"invalids"`
	Missing     int `json:"missing"`
	Imputed     int `json:"imputed"`
}

// Report is the full outcome of a cleaning run. It must not be modified after return.
type Report struct {
	Columns    []string      `json:"columns"`
	Types      ColumnTypeMap `json:"types"`
	Proposal   []ProposalRow `json:"proposal"`
	Final      []ProposalRow `json:"final"`
	Diffs      []DiffEntry   `json:"diffs"`
	Invalid    ColumnIndex   `json:"invalid"`
	Outliers   ColumnIndex   `json:"outliers"`
	Duplicates DuplicateSet  `json:"duplicates"`
	FuzzyPairs []FuzzyPair   `json:"fuzzy_pairs,omitempty"`

	Before       QualityMetrics `json:"before"`
	After        QualityMetrics `json:"after"`
	ScoreBefore  int            `json:"score_before"`
	ScoreAfter   int            `json:"score_after"`
	BeforePolicy BeforePolicy   `json:"before_policy"`
	Stats        Stats          `json:"stats"`
}

// Validate checks the column-set invariant and returns the resolved column order.
func (ds Dataset) Validate() ([]string, error) {
	cols := ds.Columns
	if cols == nil && len(ds.Rows) > 0 {
		cols = make([]string, 0, len(ds.Rows[0]))
		for k := range ds.Rows[0] {
			cols = append(cols, k)
		}
		sort.Strings(cols)
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrMalformedDataset)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedDataset, c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range ds.Rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedDataset, i, len(row), len(cols))
		}
		for k := range row {
			if _, ok := seen[k]; !ok {
				return nil, fmt.Errorf("%w: row %d has unexpected column %q", ErrMalformedDataset, i, k)
			}
		}
	}
	return cols, nil
}

// isMissing reports whether a raw value counts as missing.
func isMissing(s string) bool { return strings.TrimSpace(s) == "" }

func strPtr(s string) *string { return &s }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
