package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	return flags
}

func TestLoad_DefaultsWhenNoFlagsSet(t *testing.T) {
	t.Parallel()

	flags := newFlagSet(t)
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.OutputDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.Stats)
	require.Equal(t, "", cfg.Scenarios)
}

func TestLoad_ReadsParsedFlagValues(t *testing.T) {
	t.Parallel()

	flags := newFlagSet(t)
	require.NoError(t, flags.Parse([]string{
		"--seed=42",
		"--output-dir=/tmp/runs",
		"--log-level=debug",
		"--stats",
		"--scenarios=batch.yaml",
	}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Seed)
	require.Equal(t, "/tmp/runs", cfg.OutputDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Stats)
	require.Equal(t, "batch.yaml", cfg.Scenarios)
}
