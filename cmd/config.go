package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/dataclean-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dataclean configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if c == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "default_country: %s\n", c.DefaultCountry)
		fmt.Fprintf(out, "impute_missing: %t\n", c.ImputeMissing)
		fmt.Fprintf(out, "remove_duplicates: %t\n", c.RemoveDuplicates)
		fmt.Fprintf(out, "fuzzy_threshold: %d\n", c.FuzzyThreshold)
		fmt.Fprintf(out, "fuzzy_sample: %d\n", c.FuzzySample)
		fmt.Fprintf(out, "before_policy: %s\n", c.BeforePolicy)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "schedule_every_minutes: %d\n", c.ScheduleEveryMinutes)
		fmt.Fprintf(out, "schedule_tick_seconds: %d\n", c.ScheduleTickSeconds)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := applyConfigValue(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func applyConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "default_country":
		c.DefaultCountry = strings.ToUpper(strings.TrimSpace(val))
	case "impute_missing":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for impute_missing: %v", val)
		}
		c.ImputeMissing = b
	case "remove_duplicates":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for remove_duplicates: %v", val)
		}
		c.RemoveDuplicates = b
	case "fuzzy_threshold":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for fuzzy_threshold: %w", err)
		}
		c.FuzzyThreshold = i
	case "fuzzy_sample":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for fuzzy_sample: %w", err)
		}
		c.FuzzySample = i
	case "before_policy":
		c.BeforePolicy = strings.ToLower(strings.TrimSpace(val))
	case "delimiter":
		c.Delimiter = val
	case "log_level":
		c.LogLevel = strings.ToLower(strings.TrimSpace(val))
	case "log_format":
		c.LogFormat = strings.ToLower(strings.TrimSpace(val))
	case "schedule_every_minutes":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for schedule_every_minutes: %w", err)
		}
		c.ScheduleEveryMinutes = i
	case "schedule_tick_seconds":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for schedule_tick_seconds: %w", err)
		}
		c.ScheduleTickSeconds = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
