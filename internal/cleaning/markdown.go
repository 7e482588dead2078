package cleaning

import (
	"fmt"
	"strings"
)

// maxSampleChanges caps the [SAMPLE CHANGES] section.
const maxSampleChanges = 10

// maxListedPairs caps the [FUZZY PAIRS] section.
const maxListedPairs = 20

// Markdown renders a compact human-readable summary of the run.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CLEANING SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Stats.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Stats.ColCount))
	b.WriteString(fmt.Sprintf("Corrections: %d\n", r.Stats.Corrections))
	b.WriteString(fmt.Sprintf("Invalid cells: %d\n", r.Stats.Invalids))
	b.WriteString(fmt.Sprintf("Missing cells: %d\n", r.Stats.Missing))
	if r.Stats.Imputed > 0 {
		b.WriteString(fmt.Sprintf("Imputed cells: %d\n", r.Stats.Imputed))
	}
	if len(r.Final) != len(r.Proposal) {
		b.WriteString(fmt.Sprintf("Rows kept: %d (removed %d duplicates)\n", len(r.Final), len(r.Proposal)-len(r.Final)))
	}

	b.WriteString("\n[QUALITY]\n")
	b.WriteString(fmt.Sprintf("Score: %d → %d", r.ScoreBefore, r.ScoreAfter))
	if r.BeforePolicy == BeforeUnknown {
		b.WriteString(" (before: validity unknown)")
	}
	b.WriteString("\n")
	writeMetric(&b, "completeness", r.Before.Completeness, r.After.Completeness)
	writeMetric(&b, "validity", r.Before.Validity, r.After.Validity)
	writeMetric(&b, "uniqueness", r.Before.Uniqueness, r.After.Uniqueness)
	writeMetric(&b, "consistency", r.Before.Consistency, r.After.Consistency)
	writeMetric(&b, "outliers_ok", r.Before.OutliersOK, r.After.OutliersOK)

	b.WriteString("\n[COLUMNS]\n")
	for _, c := range r.Columns {
		b.WriteString(fmt.Sprintf("- %s: %s", safeName(c), r.Types[c]))
		if n := len(r.Invalid[c]); n > 0 {
			b.WriteString(fmt.Sprintf("; invalid %d", n))
		}
		if n := len(r.Outliers[c]); n > 0 {
			b.WriteString(fmt.Sprintf("; outliers %d", n))
		}
		b.WriteString("\n")
	}

	if len(r.Duplicates) > 0 {
		b.WriteString("\n[DUPLICATES]\n")
		b.WriteString(fmt.Sprintf("Rows: %s\n", joinInts(r.Duplicates, 30)))
	}

	if len(r.FuzzyPairs) > 0 {
		b.WriteString("\n[FUZZY PAIRS]\n")
		for i, fp := range r.FuzzyPairs {
			if i == maxListedPairs {
				b.WriteString(fmt.Sprintf("… %d more\n", len(r.FuzzyPairs)-maxListedPairs))
				break
			}
			b.WriteString(fmt.Sprintf("- rows %d & %d: %d%%\n", fp.I, fp.J, fp.Score))
		}
	}

	if len(r.Diffs) > 0 {
		b.WriteString("\n[SAMPLE CHANGES]\n")
		for i, d := range r.Diffs {
			if i == maxSampleChanges {
				b.WriteString(fmt.Sprintf("… %d more\n", len(r.Diffs)-maxSampleChanges))
				break
			}
			b.WriteString(fmt.Sprintf("- row %d, %s: %s → %s (%s, %.2f)\n",
				d.Row, safeName(d.Column), showVal(d.Before), showVal(d.After), d.Rule, d.Confidence))
		}
	}
	return b.String()
}

func writeMetric(b *strings.Builder, name string, before, after float64) {
	b.WriteString(fmt.Sprintf("- %s: %.1f%% → %.1f%%\n", name, before*100, after*100))
}

func joinInts(xs []int, limit int) string {
	parts := make([]string, 0, len(xs))
	for i, x := range xs {
		if i == limit {
			parts = append(parts, fmt.Sprintf("… (+%d)", len(xs)-limit))
			break
		}
		parts = append(parts, fmt.Sprintf("%d", x))
	}
	return strings.Join(parts, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func showVal(p *string) string {
	if p == nil {
		return "∅"
	}
	return fmt.Sprintf("%q", safeVal(*p))
}
