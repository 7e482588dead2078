package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataclean-cli/internal/rules"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage column rule sets",
}

var rulesPresetCmd = &cobra.Command{
	Use:   "preset <email|phone|date> <file.yaml>",
	Short: "Write a built-in rule preset to a YAML file for editing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := rules.Preset(args[0])
		if err != nil {
			return err
		}
		if err := set.Save(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s rules to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesPresetCmd)
}
