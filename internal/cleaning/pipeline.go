package cleaning

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Pipeline runs the cleaning passes. It holds no per-run state and is safe to reuse.
type Pipeline struct {
	logger *zap.Logger
}

// NewPipeline returns a pipeline logging to logger; nil disables logging.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{logger: logger}
}

// Clean runs a pipeline without logging.
func Clean(ds Dataset, types ColumnTypeMap, opt Options) (*Report, error) {
	return NewPipeline(nil).Run(ds, types, opt)
}

// Run cleans ds. Neither ds nor types is modified.
func (p *Pipeline) Run(ds Dataset, types ColumnTypeMap, opt Options) (*Report, error) {
	cols, err := ds.Validate()
	if err != nil {
		return nil, err
	}
	opt, err = resolveOptions(cols, types, opt)
	if err != nil {
		return nil, err
	}
	ds = Dataset{Columns: cols, Rows: ds.Rows}
	n := len(ds.Rows)

	typ := InferTypes(ds, types)
	p.logger.Debug("types resolved", zap.Any("types", typ))

	// normalize
	rec := &Recorder{}
	proposal := make([]ProposalRow, n)
	invalid := ColumnIndex{}
	missing, corrections := 0, 0
	for i, row := range ds.Rows {
		pr := make(ProposalRow, len(cols))
		for _, c := range cols {
			raw := row[c]
			res := Normalize(typ[c], raw, opt.DefaultCountry)
			pr[c] = res.Value
			switch {
			case res.Value == nil:
				missing++
				// blank but non-empty input is cleared to null
				if res.Changed && rec.Record(DiffEntry{Row: i, Column: c, Before: strPtr(raw), After: nil, Rule: RuleTrim}) {
					corrections++
				}
			case !res.Valid:
				invalid.add(c, i)
				rec.Record(DiffEntry{Row: i, Column: c, Before: strPtr(raw), After: res.Value, Rule: res.Rule})
			case res.Changed:
				if rec.Record(DiffEntry{Row: i, Column: c, Before: strPtr(raw), After: res.Value, Rule: res.Rule}) {
					corrections++
				}
			}
		}
		proposal[i] = pr
	}
	p.logger.Debug("normalized",
		zap.Int("corrections", corrections),
		zap.Int("invalid", invalid.Count()),
		zap.Int("missing", missing))

	// outliers
	numeric := numericColumns(cols, typ)
	outliers := ColumnIndex{}
	for _, c := range numeric {
		for _, r := range DetectOutliers(numericValues(proposal, c, invalid)) {
			outliers.add(c, r)
		}
	}

	keys := make([]string, n)
	for i, r := range proposal {
		keys[i] = CompositeKey(r, cols, typ)
	}
	rawInvalid := invalid.clone()
	rawMissing := missing

	imputed := ImputeStats{}
	if opt.ImputeMissing {
		imputed = Impute(proposal, cols, typ, invalid, rec)
		missing -= imputed.FromMissing
		p.logger.Debug("imputed", zap.Int("cells", imputed.Imputed))
	}

	dups := duplicatesByKey(keys)

	var pairs []FuzzyPair
	if len(opt.FuzzyKeys) > 0 {
		pairs, err = FuzzyPairs(proposal, opt.FuzzyKeys, opt.FuzzyThreshold, opt.FuzzySample)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("fuzzy pairs", zap.Int("pairs", len(pairs)))
	}

	after := Score(QualityInput{
		RowCount:       n,
		Columns:        cols,
		Missing:        missing,
		Invalid:        invalid,
		Duplicates:     len(dups),
		NumericColumns: numeric,
		Outliers:       outliers,
	})
	before := p.scoreBefore(ds, numeric, rawMissing, rawInvalid, opt.BeforePolicy)

	final := proposal
	if opt.RemoveDuplicates && len(dups) > 0 {
		final = make([]ProposalRow, 0, n-len(dups))
		for i, r := range proposal {
			if !dups.Contains(i) {
				final = append(final, r)
			}
		}
	}

	rep := &Report{
		Columns:      cols,
		Types:        typ,
		Proposal:     proposal,
		Final:        final,
		Diffs:        rec.Entries(),
		Invalid:      invalid,
		Outliers:     outliers,
		Duplicates:   dups,
		FuzzyPairs:   pairs,
		Before:       before,
		After:        after,
		ScoreBefore:  before.Score(),
		ScoreAfter:   after.Score(),
		BeforePolicy: opt.BeforePolicy,
		Stats: Stats{
			RowCount:    n,
			ColCount:    len(cols),
			Corrections: corrections,
			Duplicates:  len(dups),
			Invalids:    invalid.Count(),
			Missing:     missing,
			Imputed:     imputed.Imputed,
		},
	}
	p.logger.Info("cleaning done",
		zap.Int("rows", n),
		zap.Int("cols", len(cols)),
		zap.Int("diffs", len(rep.Diffs)),
		zap.Int("duplicates", len(dups)),
		zap.Int("score_before", rep.ScoreBefore),
		zap.Int("score_after", rep.ScoreAfter))
	return rep, nil
}

// scoreBefore rates the raw dataset. Raw duplicates compare untrimmed values.
func (p *Pipeline) scoreBefore(ds Dataset, numeric []string, missing int, invalid ColumnIndex, policy BeforePolicy) QualityMetrics {
	rawKeys := make([]string, len(ds.Rows))
	for i, r := range ds.Rows {
		parts := make([]string, len(ds.Columns))
		for j, c := range ds.Columns {
			parts[j] = r[c]
		}
		rawKeys[i] = strings.Join(parts, keySeparator)
	}
	outliers := ColumnIndex{}
	for _, c := range numeric {
		var vals []IndexedValue
		for i, r := range ds.Rows {
			if f, ok := parseNumber(r[c]); ok {
				vals = append(vals, IndexedValue{Row: i, Value: f})
			}
		}
		for _, row := range DetectOutliers(vals) {
			outliers.add(c, row)
		}
	}
	m := Score(QualityInput{
		RowCount:       len(ds.Rows),
		Columns:        ds.Columns,
		Missing:        missing,
		Invalid:        invalid,
		Duplicates:     len(duplicatesByKey(rawKeys)),
		NumericColumns: numeric,
		Outliers:       outliers,
	})
	if policy == BeforeUnknown {
		m.Validity, m.Consistency, m.OutliersOK = 0, 0, 0
	}
	return m
}

// resolveOptions fills defaults and rejects options the run cannot honour.
func resolveOptions(cols []string, types ColumnTypeMap, opt Options) (Options, error) {
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}
	opt.DefaultCountry = strings.ToUpper(strings.TrimSpace(opt.DefaultCountry))
	if opt.DefaultCountry == "" {
		opt.DefaultCountry = "FR"
	}
	if !isCountryCode(opt.DefaultCountry) {
		return opt, fmt.Errorf("%w: country %q is not a 2-letter code", ErrInvalidOptions, opt.DefaultCountry)
	}
	if opt.FuzzyThreshold < 0 || opt.FuzzyThreshold > 100 {
		return opt, fmt.Errorf("%w: fuzzy threshold %d outside 0..100", ErrInvalidOptions, opt.FuzzyThreshold)
	}
	if opt.FuzzySample < 0 {
		return opt, fmt.Errorf("%w: fuzzy sample %d is negative", ErrInvalidOptions, opt.FuzzySample)
	}
	if opt.FuzzySample == 0 {
		opt.FuzzySample = DefaultFuzzySample
	}
	for _, k := range opt.FuzzyKeys {
		if _, ok := known[k]; !ok {
			return opt, fmt.Errorf("%w: unknown fuzzy key column %q", ErrInvalidOptions, k)
		}
	}
	for c := range types {
		if _, ok := known[c]; !ok {
			return opt, fmt.Errorf("%w: type given for unknown column %q", ErrInvalidOptions, c)
		}
	}
	switch opt.BeforePolicy {
	case "":
		opt.BeforePolicy = BeforeMeasured
	case BeforeMeasured, BeforeUnknown:
	default:
		return opt, fmt.Errorf("%w: before policy %q (use measured|unknown)", ErrInvalidOptions, opt.BeforePolicy)
	}
	return opt, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func numericColumns(cols []string, types ColumnTypeMap) []string {
	var out []string
	for _, c := range cols {
		if types[c] == TypeNumber {
			out = append(out, c)
		}
	}
	return out
}

func (ci ColumnIndex) clone() ColumnIndex {
	out := make(ColumnIndex, len(ci))
	for c, rows := range ci {
		out[c] = append([]int(nil), rows...)
	}
	return out
}

// Dataset converts the final rows back into a raw dataset; missing cells become "".
func (r *Report) Dataset() Dataset {
	rows := make([]Row, len(r.Final))
	for i, pr := range r.Final {
		row := make(Row, len(r.Columns))
		for _, c := range r.Columns {
			row[c] = deref(pr[c])
		}
		rows[i] = row
	}
	return Dataset{Columns: append([]string(nil), r.Columns...), Rows: rows}
}
