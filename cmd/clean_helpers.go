package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	cfgpkg "github.com/KaramelBytes/dataclean-cli/internal/config"
	"github.com/KaramelBytes/dataclean-cli/internal/export"
	"github.com/KaramelBytes/dataclean-cli/internal/parser"
	"github.com/KaramelBytes/dataclean-cli/internal/rules"
	"github.com/KaramelBytes/dataclean-cli/internal/utils"
)

// cleanFlags holds command-line values that override config for a cleaning run.
// Only flags marked in changed take effect.
type cleanFlags struct {
	Country          string
	Impute           bool
	RemoveDuplicates bool
	FuzzyKeys        []string
	FuzzyThreshold   int
	FuzzySample      int
	BeforePolicy     string

	changed map[string]bool
}

func resolveCleanOptions(c *cfgpkg.Global, f cleanFlags) (cleaning.Options, error) {
	opt := cleaning.DefaultOptions()
	if c != nil {
		if c.DefaultCountry != "" {
			opt.DefaultCountry = c.DefaultCountry
		}
		opt.ImputeMissing = c.ImputeMissing
		opt.RemoveDuplicates = c.RemoveDuplicates
		opt.FuzzyThreshold = c.FuzzyThreshold
		opt.FuzzySample = c.FuzzySample
		if c.BeforePolicy != "" {
			opt.BeforePolicy = cleaning.BeforePolicy(c.BeforePolicy)
		}
	}
	if f.changed["country"] {
		opt.DefaultCountry = strings.ToUpper(strings.TrimSpace(f.Country))
	}
	if f.changed["impute"] {
		opt.ImputeMissing = f.Impute
	}
	if f.changed["remove-duplicates"] {
		opt.RemoveDuplicates = f.RemoveDuplicates
	}
	if f.changed["fuzzy-threshold"] {
		opt.FuzzyThreshold = f.FuzzyThreshold
	}
	if f.changed["fuzzy-sample"] {
		opt.FuzzySample = f.FuzzySample
	}
	if f.changed["before-policy"] {
		switch p := cleaning.BeforePolicy(strings.ToLower(strings.TrimSpace(f.BeforePolicy))); p {
		case cleaning.BeforeMeasured, cleaning.BeforeUnknown:
			opt.BeforePolicy = p
		default:
			return opt, fmt.Errorf("unsupported --before-policy: %s (use measured|unknown)", f.BeforePolicy)
		}
	}
	for _, k := range f.FuzzyKeys {
		if k = strings.TrimSpace(k); k != "" {
			opt.FuzzyKeys = append(opt.FuzzyKeys, k)
		}
	}
	return opt, nil
}

// parseTypeSpecs turns repeated col=type flags into a type map.
func parseTypeSpecs(specs []string) (cleaning.ColumnTypeMap, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(cleaning.ColumnTypeMap, len(specs))
	for _, s := range specs {
		i := strings.LastIndex(s, "=")
		if i <= 0 || i == len(s)-1 {
			return nil, fmt.Errorf("invalid --type %q (use column=type)", s)
		}
		t, err := cleaning.ParseSemanticType(s[i+1:])
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(s[:i])] = t
	}
	return out, nil
}

func loadDataset(path, delimFlag string, c *cfgpkg.Global) (cleaning.Dataset, error) {
	spec := delimFlag
	if spec == "" && c != nil {
		spec = c.Delimiter
	}
	delim, err := parser.ParseDelimiter(spec)
	if err != nil {
		return cleaning.Dataset{}, err
	}
	return parser.LoadFile(path, parser.Options{Delimiter: delim})
}

// writeCleanedCSV writes the final rows of rep to path atomically.
func writeCleanedCSV(path string, rep *cleaning.Report) error {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rep.Columns, rep.Final); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// writeAudit writes the diff log as CSV or JSON Lines, chosen by extension.
func writeAudit(path string, rep *cleaning.Report, ts time.Time) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		if err := export.WriteAuditCSV(&buf, rep.Diffs); err != nil {
			return err
		}
	case ".jsonl", ".ndjson":
		if err := export.WriteAuditJSONL(&buf, rep.Diffs, ts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported --audit extension %q (use .csv or .jsonl)", filepath.Ext(path))
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// writeReport writes the report as Markdown or JSON, chosen by extension.
func writeReport(path string, rep *cleaning.Report, extra string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return utils.SafeWriteFile(path, []byte(rep.Markdown()+extra))
	case ".json":
		var buf bytes.Buffer
		if err := export.WriteReportJSON(&buf, rep); err != nil {
			return err
		}
		return utils.SafeWriteFile(path, buf.Bytes())
	default:
		return fmt.Errorf("unsupported --report extension %q (use .md or .json)", filepath.Ext(path))
	}
}

// loadRuleSet resolves --rules: a YAML file path, or preset:<name>.
func loadRuleSet(spec string) (*rules.Set, error) {
	if name, ok := strings.CutPrefix(spec, "preset:"); ok {
		return rules.Preset(name)
	}
	return rules.Load(spec)
}

func rulesMarkdown(res rules.Result) string {
	var b strings.Builder
	b.WriteString("\n[RULES]\n")
	b.WriteString(fmt.Sprintf("Rows checked: %d, failed: %d\n", res.Checked, res.Failed))
	for i, v := range res.Violations {
		if i == 10 {
			b.WriteString(fmt.Sprintf("… %d more\n", len(res.Violations)-10))
			break
		}
		b.WriteString(fmt.Sprintf("- row %d, %s: %s\n", v.Row, v.Column, v.Reason))
	}
	return b.String()
}
