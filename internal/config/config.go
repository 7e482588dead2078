package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Cleaning defaults
	DefaultCountry   string `mapstructure:"default_country" yaml:"default_country"`
	ImputeMissing    bool   `mapstructure:"impute_missing" yaml:"impute_missing"`
	RemoveDuplicates bool   `mapstructure:"remove_duplicates" yaml:"remove_duplicates"`
	FuzzyThreshold   int    `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	FuzzySample      int    `mapstructure:"fuzzy_sample" yaml:"fuzzy_sample"`
	BeforePolicy     string `mapstructure:"before_policy" yaml:"before_policy"`

	// Ingestion; empty delimiter means sniff from the header line
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Scheduling
	ScheduleEveryMinutes int `mapstructure:"schedule_every_minutes" yaml:"schedule_every_minutes"`
	ScheduleTickSeconds  int `mapstructure:"schedule_tick_seconds" yaml:"schedule_tick_seconds"`
}

// Dir returns ~/.dataclean.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataclean"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataclean/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATACLEAN")
	v.AutomaticEnv()

	v.SetDefault("default_country", "FR")
	v.SetDefault("impute_missing", false)
	v.SetDefault("remove_duplicates", false)
	v.SetDefault("fuzzy_threshold", 90)
	v.SetDefault("fuzzy_sample", 300)
	v.SetDefault("before_policy", "measured")
	v.SetDefault("delimiter", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("schedule_every_minutes", 60)
	v.SetDefault("schedule_tick_seconds", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DefaultCountry = strings.ToUpper(strings.TrimSpace(c.DefaultCountry))
	return &c, nil
}

// Validate rejects values the cleaning pipeline or scheduler cannot use.
func (c *Global) Validate() error {
	if len(c.DefaultCountry) != 2 {
		return fmt.Errorf("default_country must be a 2-letter region code, got %q", c.DefaultCountry)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy_threshold must be within 0..100, got %d", c.FuzzyThreshold)
	}
	if c.FuzzySample < 0 {
		return fmt.Errorf("fuzzy_sample must be >= 0, got %d", c.FuzzySample)
	}
	switch c.BeforePolicy {
	case "", "measured", "unknown":
	default:
		return fmt.Errorf("before_policy must be measured or unknown, got %q", c.BeforePolicy)
	}
	if len([]rune(c.Delimiter)) > 1 && c.Delimiter != `\t` {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.ScheduleEveryMinutes <= 0 {
		return fmt.Errorf("schedule_every_minutes must be > 0, got %d", c.ScheduleEveryMinutes)
	}
	if c.ScheduleTickSeconds <= 0 {
		return fmt.Errorf("schedule_tick_seconds must be > 0, got %d", c.ScheduleTickSeconds)
	}
	return nil
}
