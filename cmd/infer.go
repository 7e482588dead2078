package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
	"github.com/spf13/cobra"
)

var infDelimiter string

var inferCmd = &cobra.Command{
	Use:   "infer <file>",
	Short: "Print the inferred semantic type of each column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		ds, err := loadDataset(args[0], infDelimiter, c)
		if err != nil {
			return err
		}
		cols, err := ds.Validate()
		if err != nil {
			return err
		}
		types := cleaning.InferTypes(ds, nil)
		out := cmd.OutOrStdout()
		for _, col := range cols {
			fmt.Fprintf(out, "%s: %s\n", col, types[col])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inferCmd)
	inferCmd.Flags().StringVar(&infDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
}
