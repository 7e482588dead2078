package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/dataclean-cli/internal/config"
	"github.com/KaramelBytes/dataclean-cli/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Shared logger, built from config in loadConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dataclean",
	Short: "dataclean: normalize, validate and deduplicate tabular data",
	Long: `dataclean cleans CSV/TSV datasets: it infers column types, normalizes emails, phones,
dates and numbers, flags invalid cells and outliers, finds duplicates, optionally imputes
missing values, and reports a quality score before and after cleaning with a full audit log.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataclean/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaultConfig()
	}
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using defaults\n", err)
		c = defaultConfig()
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	l, err := logging.New(level, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; logging disabled\n", err)
		l = zap.NewNop()
	}
	logger = l
}

// currentConfig returns the loaded configuration, loading it on first use.
func currentConfig() *cfgpkg.Global {
	if cfg == nil || logger == nil {
		loadConfig()
	}
	return cfg
}

func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		DefaultCountry:       "FR",
		FuzzyThreshold:       90,
		FuzzySample:          300,
		BeforePolicy:         "measured",
		LogLevel:             "info",
		LogFormat:            "console",
		ScheduleEveryMinutes: 60,
		ScheduleTickSeconds:  10,
	}
}
