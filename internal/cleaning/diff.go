package cleaning

// Rule names the transformation or check behind a diff entry.
type Rule string

const (
	RuleTrim          Rule = "trim"
	RuleEmailLower    Rule = "email_lower"
	RuleEmailFix      Rule = "email_fix"
	RulePhoneE164     Rule = "phone_e164"
	RuleDateISO       Rule = "date_iso"
	RuleNumberParse   Rule = "number_parse"
	RuleInvalidEmail  Rule = "invalid_email"
	RuleInvalidPhone  Rule = "invalid_phone"
	RuleInvalidDate   Rule = "invalid_date"
	RuleInvalidNumber Rule = "invalid_number"
	RuleImputeMedian  Rule = "impute_median"
	RuleImputeMode    Rule = "impute_mode"
)

// Confidence returns the fixed confidence attached to entries produced by r.
func (r Rule) Confidence() float64 {
	switch r {
	case RuleTrim:
		return 0.80
	case RuleEmailLower, RuleEmailFix, RulePhoneE164, RuleDateISO, RuleNumberParse:
		return 0.95
	case RuleInvalidEmail, RuleInvalidPhone, RuleInvalidDate, RuleInvalidNumber:
		return 0.50
	case RuleImputeMedian:
		return 0.85
	case RuleImputeMode:
		return 0.80
	default:
		return 0
	}
}

// IsFlag reports whether r marks a failed validation rather than a change.
func (r Rule) IsFlag() bool {
	switch r {
	case RuleInvalidEmail, RuleInvalidPhone, RuleInvalidDate, RuleInvalidNumber:
		return true
	}
	return false
}

// DiffEntry is one audited cell-level change or validation flag.
type DiffEntry struct {
	Row        int     `json:"row"`
	Column     string  `json:"column"`
	Before     *string `json:"before"`
	After      *string `json:"after"`
	Rule       Rule    `json:"rule"`
	Confidence float64 `json:"confidence"`
}

// Recorder is an append-only audit log.
type Recorder struct {
	entries []DiffEntry
}

// Record appends e and reports whether it was kept. Change entries whose
// before and after are equal are refused; flags are always kept.
func (r *Recorder) Record(e DiffEntry) bool {
	if !e.Rule.IsFlag() && equalPtr(e.Before, e.After) {
		return false
	}
	if e.Confidence == 0 {
		e.Confidence = e.Rule.Confidence()
	}
	r.entries = append(r.entries, e)
	return true
}

// Entries returns a copy of the recorded entries in insertion order.
func (r *Recorder) Entries() []DiffEntry {
	out := make([]DiffEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Len() int { return len(r.entries) }
