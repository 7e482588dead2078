package cleaning

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFuzzySample caps how many leading rows take part in fuzzy matching.
const DefaultFuzzySample = 300

const (
	keySeparator = "\x1f"
	nullMarker   = "\x00"
)

// CompositeKey builds the exact-match key of a normalized row.
func CompositeKey(row ProposalRow, columns []string, types ColumnTypeMap) string {
	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteString(keySeparator)
		}
		p := row[c]
		if p == nil {
			b.WriteString(nullMarker)
			continue
		}
		switch types[c] {
		case TypeEmail:
			b.WriteString("E:")
		case TypePhone:
			b.WriteString("P:")
		}
		b.WriteString(*p)
	}
	return b.String()
}

// FindDuplicates returns, ascending, every row whose key already appeared earlier.
func FindDuplicates(rows []ProposalRow, columns []string, types ColumnTypeMap) DuplicateSet {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = CompositeKey(r, columns, types)
	}
	return duplicatesByKey(keys)
}

func duplicatesByKey(keys []string) DuplicateSet {
	seen := make(map[string]struct{}, len(keys))
	var dups DuplicateSet
	for i, k := range keys {
		if _, ok := seen[k]; ok {
			dups = append(dups, i)
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey lowercases, collapses whitespace and strips diacritics.
func foldKey(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	out, _, err := transform.String(foldAccents, s)
	if err != nil {
		return s
	}
	return out
}

// FuzzySimilarity returns a symmetric 0-100 score for two already-folded strings.
func FuzzySimilarity(a, b string) int {
	return int(math.Round(100 * levenshtein.Similarity(a, b, nil)))
}

// FuzzyPairs compares the first sample rows pairwise on the concatenated key columns and
// returns pairs scoring at least threshold, best first.
func FuzzyPairs(rows []ProposalRow, keys []string, threshold int, sample int) ([]FuzzyPair, error) {
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: fuzzy threshold %d outside 0..100", ErrInvalidOptions, threshold)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no fuzzy key columns", ErrInvalidOptions)
	}
	if sample <= 0 {
		sample = DefaultFuzzySample
	}
	if len(rows) > sample {
		rows = rows[:sample]
	}
	if len(rows) > 0 {
		for _, k := range keys {
			if _, ok := rows[0][k]; !ok {
				return nil, fmt.Errorf("%w: unknown fuzzy key column %q", ErrInvalidOptions, k)
			}
		}
	}

	folded := make([]string, len(rows))
	for i, r := range rows {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, deref(r[k]))
		}
		folded[i] = foldKey(strings.Join(parts, " "))
	}

	var pairs []FuzzyPair
	for i := 0; i < len(folded); i++ {
		for j := i + 1; j < len(folded); j++ {
			if folded[i] == "" && folded[j] == "" {
				continue
			}
			if s := FuzzySimilarity(folded[i], folded[j]); s >= threshold {
				pairs = append(pairs, FuzzyPair{I: i, J: j, Score: s})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].Score != pairs[b].Score {
			return pairs[a].Score > pairs[b].Score
		}
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
	return pairs, nil
}
