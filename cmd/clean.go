package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/KaramelBytes/dataclean-cli/internal/jobs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	clnCountry          string
	clnImpute           bool
	clnRemoveDuplicates bool
	clnTypes            []string
	clnFuzzyKeys        []string
	clnFuzzyThreshold   int
	clnFuzzySample      int
	clnBeforePolicy     string
	clnDelimiter        string
	clnRules            string
	clnStrictRules      bool
	clnOutputPath       string
	clnAuditPath        string
	clnReportPath       string
	clnQuiet            bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean a CSV/TSV and report changes and quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		opt, err := resolveCleanOptions(c, cleanFlagValues(cmd))
		if err != nil {
			return err
		}
		types, err := parseTypeSpecs(clnTypes)
		if err != nil {
			return err
		}
		ds, err := loadDataset(path, clnDelimiter, c)
		if err != nil {
			return err
		}

		started := time.Now()
		rep, err := cleaning.NewPipeline(logger).Run(ds, types, opt)
		if err != nil {
			return err
		}
		finished := time.Now()

		extra := ""
		var ruleErr error
		if clnRules != "" {
			set, err := loadRuleSet(clnRules)
			if err != nil {
				return err
			}
			res, err := set.Evaluate(rep.Columns, rep.Final)
			if err != nil {
				return err
			}
			extra = rulesMarkdown(res)
			if clnStrictRules && res.Failed > 0 {
				ruleErr = fmt.Errorf("%d of %d rows failed rules: %w", res.Failed, res.Checked, res.Err())
			}
		}

		out := cmd.OutOrStdout()
		if clnOutputPath != "" {
			if err := writeCleanedCSV(clnOutputPath, rep); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote cleaned data to %s\n", clnOutputPath)
		}
		if clnAuditPath != "" {
			if err := writeAudit(clnAuditPath, rep, finished); err != nil {
				return fmt.Errorf("write audit: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote audit log to %s\n", clnAuditPath)
		}
		if clnReportPath != "" {
			if err := writeReport(clnReportPath, rep, extra); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote report to %s\n", clnReportPath)
		} else if !clnQuiet {
			fmt.Fprintln(out, rep.Markdown()+extra)
		}

		rec := jobs.NewRecord(filepath.Base(path), rep, started, finished)
		rec.OutPathCSV, rec.OutPathLog = clnOutputPath, clnAuditPath
		logger.Info("job finished",
			zap.String("id", rec.ID),
			zap.String("file", rec.Filename),
			zap.Duration("took", rec.Duration()),
			zap.Int("score_before", rec.ScoreBefore),
			zap.Int("score_after", rec.ScoreAfter))
		return ruleErr
	},
}

func cleanFlagValues(cmd *cobra.Command) cleanFlags {
	f := cleanFlags{
		Country:          clnCountry,
		Impute:           clnImpute,
		RemoveDuplicates: clnRemoveDuplicates,
		FuzzyKeys:        clnFuzzyKeys,
		FuzzyThreshold:   clnFuzzyThreshold,
		FuzzySample:      clnFuzzySample,
		BeforePolicy:     clnBeforePolicy,
		changed:          map[string]bool{},
	}
	for _, name := range []string{"country", "impute", "remove-duplicates", "fuzzy-threshold", "fuzzy-sample", "before-policy"} {
		f.changed[name] = cmd.Flags().Changed(name)
	}
	return f
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&clnCountry, "country", "FR", "default region for national phone numbers (ISO 3166 alpha-2)")
	cleanCmd.Flags().BoolVar(&clnImpute, "impute", false, "fill missing/invalid cells (median for numbers, mode otherwise)")
	cleanCmd.Flags().BoolVar(&clnRemoveDuplicates, "remove-duplicates", false, "drop exact duplicate rows from the cleaned output")
	cleanCmd.Flags().StringArrayVar(&clnTypes, "type", nil, "force a column type: column=text|number|date|email|phone (repeatable)")
	cleanCmd.Flags().StringSliceVar(&clnFuzzyKeys, "fuzzy-keys", nil, "comma-separated columns compared for near-duplicates")
	cleanCmd.Flags().IntVar(&clnFuzzyThreshold, "fuzzy-threshold", 90, "minimum similarity (0-100) for a fuzzy pair")
	cleanCmd.Flags().IntVar(&clnFuzzySample, "fuzzy-sample", cleaning.DefaultFuzzySample, "number of leading rows compared pairwise")
	cleanCmd.Flags().StringVar(&clnBeforePolicy, "before-policy", "measured", "how the pre-cleaning score is computed: measured|unknown")
	cleanCmd.Flags().StringVar(&clnDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	cleanCmd.Flags().StringVar(&clnRules, "rules", "", "rule set to check: YAML file or preset:email|phone|date")
	cleanCmd.Flags().BoolVar(&clnStrictRules, "strict-rules", false, "exit with an error when any row fails --rules (outputs are still written)")
	cleanCmd.Flags().StringVarP(&clnOutputPath, "output", "o", "", "path to write the cleaned CSV")
	cleanCmd.Flags().StringVar(&clnAuditPath, "audit", "", "path to write the audit log (.csv or .jsonl)")
	cleanCmd.Flags().StringVar(&clnReportPath, "report", "", "path to write the report (.md or .json) instead of stdout")
	cleanCmd.Flags().BoolVarP(&clnQuiet, "quiet", "q", false, "do not print the report to stdout")
}
