package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/spf13/cobra"
)

var (
	fzKeys      []string
	fzThreshold int
	fzSample    int
	fzDelimiter string
)

var fuzzyCmd = &cobra.Command{
	Use:   "fuzzy <file>",
	Short: "List near-duplicate row pairs on the given key columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(fzKeys) == 0 {
			return fmt.Errorf("--keys is required")
		}
		c := currentConfig()
		ds, err := loadDataset(args[0], fzDelimiter, c)
		if err != nil {
			return err
		}
		opt, err := resolveCleanOptions(c, cleanFlags{
			FuzzyKeys:      fzKeys,
			FuzzyThreshold: fzThreshold,
			FuzzySample:    fzSample,
			changed: map[string]bool{
				"fuzzy-threshold": cmd.Flags().Changed("threshold"),
				"fuzzy-sample":    cmd.Flags().Changed("sample"),
			},
		})
		if err != nil {
			return err
		}
		rep, err := cleaning.NewPipeline(logger).Run(ds, nil, opt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(rep.FuzzyPairs) == 0 {
			fmt.Fprintln(out, "No fuzzy pairs found")
			return nil
		}
		for _, p := range rep.FuzzyPairs {
			fmt.Fprintf(out, "%d\t%d\t%d\t%s | %s\n", p.I, p.J, p.Score,
				keyText(rep.Proposal[p.I], opt.FuzzyKeys), keyText(rep.Proposal[p.J], opt.FuzzyKeys))
		}
		return nil
	},
}

func keyText(row cleaning.ProposalRow, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := row[k]; v != nil {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(fuzzyCmd)
	fuzzyCmd.Flags().StringSliceVar(&fzKeys, "keys", nil, "comma-separated key columns to compare")
	fuzzyCmd.Flags().IntVar(&fzThreshold, "threshold", 90, "minimum similarity (0-100)")
	fuzzyCmd.Flags().IntVar(&fzSample, "sample", cleaning.DefaultFuzzySample, "number of leading rows compared pairwise")
	fuzzyCmd.Flags().StringVar(&fzDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
}
