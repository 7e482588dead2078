package cleaning

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// Result is the outcome of normalizing a single cell.
type Result struct {
	// Value is nil when the input was missing.
	Value   *string
	Valid   bool
	Changed bool
	// Rule names the transformation applied, or the failed check when !Valid.
	Rule Rule
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// emailDomainFixes maps common domain typos to their intended domain.
var emailDomainFixes = map[string]string{
	"gmial.com":   "gmail.com",
	"gmal.com":    "gmail.com",
	"gamil.com":   "gmail.com",
	"gnail.com":   "gmail.com",
	"hotmal.com":  "hotmail.com",
	"hotnail.com": "hotmail.com",
	"outlok.com":  "outlook.com",
	"yaho.com":    "yahoo.com",
	"yahooo.com":  "yahoo.com",
	"yahooo.fr":   "yahoo.fr",
}

// dateLayouts are tried in order; the first layout that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"01/02/2006",
	"02.01.2006",
	"02-01-2006",
	"2006/01/02",
	"1/2/2006",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
}

// fallbackDateLayouts cover generic date-time renderings.
var fallbackDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC1123,
	time.RFC1123Z,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Normalize cleans raw according to t. It never fails: invalid input is reported via Valid.
// country is the default region for national phone numbers.
func Normalize(t SemanticType, raw string, country string) Result {
	if isMissing(raw) {
		return Result{Value: nil, Valid: true, Changed: raw != ""}
	}
	var r Result
	switch t {
	case TypeEmail:
		r = normalizeEmail(raw)
	case TypePhone:
		r = normalizePhone(raw, country)
	case TypeDate:
		r = normalizeDate(raw)
	case TypeNumber:
		r = normalizeNumber(raw)
	default:
		r = normalizeText(raw)
	}
	r.Changed = r.Value == nil || *r.Value != raw
	return r
}

func normalizeText(raw string) Result {
	v := strings.TrimSpace(raw)
	return Result{Value: &v, Valid: true, Rule: RuleTrim}
}

func normalizeEmail(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	email := strings.ToLower(trimmed)
	rule := RuleEmailLower
	if at := strings.LastIndex(email, "@"); at >= 0 {
		if fix, ok := emailDomainFixes[email[at+1:]]; ok {
			email = email[:at+1] + fix
			rule = RuleEmailFix
		}
	}
	if !emailRegex.MatchString(email) {
		return Result{Value: &trimmed, Valid: false, Rule: RuleInvalidEmail}
	}
	return Result{Value: &email, Valid: true, Rule: rule}
}

func normalizePhone(raw string, country string) Result {
	cleaned := cleanPhone(raw)
	if cleaned == "" || cleaned == "+" {
		return Result{Value: &cleaned, Valid: false, Rule: RuleInvalidPhone}
	}
	num, err := phonenumbers.Parse(cleaned, strings.ToUpper(country))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return Result{Value: &cleaned, Valid: false, Rule: RuleInvalidPhone}
	}
	e164 := phonenumbers.Format(num, phonenumbers.E164)
	return Result{Value: &e164, Valid: true, Rule: RulePhoneE164}
}

// cleanPhone keeps digits and a single leading '+'.
func cleanPhone(raw string) string {
	s := strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeDate(raw string) Result {
	s := strings.TrimSpace(raw)
	if t, ok := parseDate(s); ok {
		iso := t.Format("2006-01-02")
		return Result{Value: &iso, Valid: true, Rule: RuleDateISO}
	}
	return Result{Value: &raw, Valid: false, Rule: RuleInvalidDate}
}

func parseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	for _, l := range fallbackDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeNumber(raw string) Result {
	f, ok := parseNumber(raw)
	if !ok {
		return Result{Value: &raw, Valid: false, Rule: RuleInvalidNumber}
	}
	v := formatNumber(f)
	return Result{Value: &v, Valid: true, Rule: RuleNumberParse}
}

// parseNumber parses locale-formatted numbers such as "1 234,56", "1.234,56" or "3,5".
func parseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	// Thousands separators that can never be decimals
	raw = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "", "\u2019", "").Replace(raw)
	if raw == "" {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		// mixed separators: "." groups thousands, "," is the decimal comma
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	case cpos >= 0:
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	if strings.Count(raw, ".") > 1 {
		raw = strings.ReplaceAll(raw, ".", "")
	}
	if !isDecimalLiteral(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isDecimalLiteral rejects anything ParseFloat accepts beyond plain decimal notation
// (hex floats, underscores, inf, nan).
func isDecimalLiteral(s string) bool {
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.' || r == '+' || r == '-' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return digits
}

func formatNumber(f float64) string {
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
