package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "FR", c.DefaultCountry)
	assert.Equal(t, 90, c.FuzzyThreshold)
	assert.Equal(t, 300, c.FuzzySample)
	assert.Equal(t, "measured", c.BeforePolicy)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 60, c.ScheduleEveryMinutes)
	assert.NoError(t, c.Validate())
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{
		DefaultCountry:       "be",
		ImputeMissing:        true,
		FuzzyThreshold:       75,
		FuzzySample:          50,
		BeforePolicy:         "unknown",
		LogLevel:             "debug",
		LogFormat:            "json",
		ScheduleEveryMinutes: 5,
		ScheduleTickSeconds:  1,
	}
	require.NoError(t, Save(in, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "fuzzy_threshold: 75")

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BE", out.DefaultCountry)
	assert.True(t, out.ImputeMissing)
	assert.Equal(t, 75, out.FuzzyThreshold)
	assert.Equal(t, "unknown", out.BeforePolicy)
	assert.Equal(t, "json", out.LogFormat)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATACLEAN_FUZZY_THRESHOLD", "42")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, c.FuzzyThreshold)
}

func TestValidate(t *testing.T) {
	base := func() *Global {
		return &Global{DefaultCountry: "FR", FuzzyThreshold: 90, ScheduleEveryMinutes: 60, ScheduleTickSeconds: 10}
	}
	require.NoError(t, base().Validate())

	bad := []func(*Global){
		func(c *Global) { c.DefaultCountry = "FRA" },
		func(c *Global) { c.FuzzyThreshold = 101 },
		func(c *Global) { c.FuzzySample = -1 },
		func(c *Global) { c.BeforePolicy = "guess" },
		func(c *Global) { c.Delimiter = ";;" },
		func(c *Global) { c.LogFormat = "xml" },
		func(c *Global) { c.ScheduleEveryMinutes = 0 },
		func(c *Global) { c.ScheduleTickSeconds = -1 },
	}
	for i, mut := range bad {
		c := base()
		mut(c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}
