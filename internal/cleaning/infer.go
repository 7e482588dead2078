package cleaning

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxInferenceSample bounds how many non-missing values are inspected per column.
const MaxInferenceSample = 50

type keywordGroup struct {
	typ SemanticType
	// substrings match anywhere in the lowercased name
	substrings []string
	// tokens must equal a whole name token
	tokens []string
}

// keywordGroups are checked in order; the first group that matches wins.
var keywordGroups = []keywordGroup{
	{typ: TypeEmail, substrings: []string{"email", "e-mail", "mail", "courriel"}},
	{typ: TypePhone, substrings: []string{"phone", "mobile", "télé"}, tokens: []string{"tel", "gsm"}},
	{typ: TypeDate, substrings: []string{"birth", "naissance"}, tokens: []string{"date", "dob"}},
	{typ: TypeNumber, substrings: []string{"amount", "price", "salary", "salaire", "montant", "prix", "quantity"}, tokens: []string{"age", "qty", "id"}},
}

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}([T ]\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?Z?)?$`)
	localeDateRe = regexp.MustCompile(`^\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}$`)
)

// InferType guesses the semantic type of a column from its name and a value sample.
func InferType(column string, sample []string) SemanticType {
	if t, ok := typeFromName(column); ok {
		return t
	}
	var dates, numbers, texts, seen int
	for _, v := range sample {
		if seen >= MaxInferenceSample {
			break
		}
		if isMissing(v) {
			continue
		}
		seen++
		s := strings.TrimSpace(v)
		switch {
		case looksLikeDate(s):
			dates++
		case looksLikeNumber(s):
			numbers++
		default:
			texts++
		}
	}
	if seen == 0 {
		return TypeUnknown
	}
	// ties favour date, then number
	switch {
	case dates > 0 && dates >= numbers && dates >= texts:
		return TypeDate
	case numbers > 0 && numbers >= texts:
		return TypeNumber
	default:
		return TypeText
	}
}

// InferTypes returns a full type map: known types are kept, the rest are inferred.
func InferTypes(ds Dataset, known ColumnTypeMap) ColumnTypeMap {
	cols := ds.Columns
	if cols == nil {
		cols, _ = ds.Validate()
	}
	out := make(ColumnTypeMap, len(cols))
	for _, c := range cols {
		if t, ok := known[c]; ok && t != "" {
			out[c] = t
			continue
		}
		sample := make([]string, 0, MaxInferenceSample)
		for _, r := range ds.Rows {
			if len(sample) == MaxInferenceSample {
				break
			}
			if v := r[c]; !isMissing(v) {
				sample = append(sample, v)
			}
		}
		out[c] = InferType(c, sample)
	}
	return out
}

func typeFromName(column string) (SemanticType, bool) {
	name := strings.ToLower(strings.TrimSpace(column))
	if name == "" {
		return "", false
	}
	tokens := nameTokens(column)
	for _, g := range keywordGroups {
		for _, kw := range g.substrings {
			if strings.Contains(name, kw) {
				return g.typ, true
			}
		}
		for _, kw := range g.tokens {
			for _, tok := range tokens {
				if tok == kw {
					return g.typ, true
				}
			}
		}
	}
	return "", false
}

// nameTokens splits a column name on non-alphanumerics and camelCase boundaries, lowercased.
func nameTokens(name string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(name)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 && unicode.IsLower(rs[i-1]) {
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

func looksLikeDate(s string) bool {
	if !isoDateRe.MatchString(s) && !localeDateRe.MatchString(s) {
		return false
	}
	_, ok := parseDate(s)
	return ok
}

func looksLikeNumber(s string) bool {
	_, ok := parseNumber(s)
	return ok
}
