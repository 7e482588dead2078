package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/KaramelBytes/dataclean-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRule is returned for rules that cannot be compiled.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is a user-defined check on one column. Zero MinLen/MaxLen disable the length checks.
type Rule struct {
	Column   string `yaml:"column" json:"column"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Regex    string `yaml:"regex,omitempty" json:"regex,omitempty"`
	MinLen   int    `yaml:"min_len,omitempty" json:"min_len,omitempty"`
	MaxLen   int    `yaml:"max_len,omitempty" json:"max_len,omitempty"`

	re *regexp.Regexp
}

// Set is an ordered list of rules.
type Set struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Violation records why a row failed a rule.
type Violation struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("row %d, column %q: %s", v.Row, v.Column, v.Reason)
}

// Result summarizes an evaluation.
type Result struct {
	Checked    int         `json:"checked"`
	Failed     int         `json:"failed"`
	FailedRows []int       `json:"failed_rows"`
	Violations []Violation `json:"violations"`
}

// Err returns the violations joined as one error, or nil when every row passed.
// Each wrapped error is a *Violation.
func (r Result) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i := range r.Violations {
		errs[i] = &r.Violations[i]
	}
	return errors.Join(errs...)
}

// Load reads and compiles a YAML rule set.
func Load(path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the rule set as YAML.
func (s *Set) Save(path string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

// Compile validates every rule and prepares its regex.
func (s *Set) Compile() error {
	for i := range s.Rules {
		r := &s.Rules[i]
		if strings.TrimSpace(r.Column) == "" {
			return fmt.Errorf("%w: rule %d has no column", ErrInvalidRule, i)
		}
		if r.MinLen < 0 || r.MaxLen < 0 || (r.MaxLen > 0 && r.MinLen > r.MaxLen) {
			return fmt.Errorf("%w: rule %d (%s) has bad length bounds %d..%d", ErrInvalidRule, i, r.Column, r.MinLen, r.MaxLen)
		}
		r.re = nil
		if r.Regex != "" {
			re, err := regexp.Compile(r.Regex)
			if err != nil {
				return fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRule, i, r.Column, err)
			}
			r.re = re
		}
	}
	return nil
}

// Check tests a single value. Empty values only fail Required.
func (r *Rule) Check(value *string) (string, bool) {
	v := ""
	if value != nil {
		v = *value
	}
	if v == "" {
		if r.Required {
			return "required value is missing", false
		}
		return "", true
	}
	n := utf8.RuneCountInString(v)
	if r.MinLen > 0 && n < r.MinLen {
		return fmt.Sprintf("length %d below minimum %d", n, r.MinLen), false
	}
	if r.MaxLen > 0 && n > r.MaxLen {
		return fmt.Sprintf("length %d above maximum %d", n, r.MaxLen), false
	}
	if r.re != nil && !r.re.MatchString(v) {
		return fmt.Sprintf("does not match %s", r.Regex), false
	}
	return "", true
}

// Evaluate applies the set to every row. Rules naming columns absent from columns
// are reported once as ErrInvalidRule.
func (s *Set) Evaluate(columns []string, rows []cleaning.ProposalRow) (Result, error) {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	for i, r := range s.Rules {
		if _, ok := known[r.Column]; !ok {
			return Result{}, fmt.Errorf("%w: rule %d references unknown column %q", ErrInvalidRule, i, r.Column)
		}
		if r.Regex != "" && r.re == nil {
			return Result{}, fmt.Errorf("%w: rule %d (%s) is not compiled", ErrInvalidRule, i, r.Column)
		}
	}

	res := Result{Checked: len(rows)}
	for i, row := range rows {
		failed := false
		for j := range s.Rules {
			r := &s.Rules[j]
			if reason, ok := r.Check(row[r.Column]); !ok {
				res.Violations = append(res.Violations, Violation{Row: i, Column: r.Column, Reason: reason})
				failed = true
			}
		}
		if failed {
			res.Failed++
			res.FailedRows = append(res.FailedRows, i)
		}
	}
	return res, nil
}

// Preset returns a built-in rule set by name: email, phone or date.
func Preset(name string) (*Set, error) {
	var s Set
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "email":
		s.Rules = []Rule{{Column: "email", Required: true, Regex: `^[^@\s]+@[^@\s]+\.[^@\s]+$`}}
	case "phone":
		s.Rules = []Rule{{Column: "phone", MinLen: 8, MaxLen: 16}}
	case "date":
		s.Rules = []Rule{{Column: "date", Regex: `^\d{4}-\d{2}-\d{2}$`}}
	default:
		return nil, fmt.Errorf("%w: unknown preset %q (use email|phone|date)", ErrInvalidRule, name)
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}
