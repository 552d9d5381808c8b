// Package config resolves the simulator's run-time settings from CLI
// flags via Viper. It deliberately never calls viper.AutomaticEnv or reads
// a config file: the simulator's only inputs are its command-line
// arguments and flags (plus the batch file a --scenarios flag names), and
// its only output is the GML files it writes.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every ambient setting the simulator reads that isn't part
// of the m/n/k/num network-shape contract.
type Config struct {
	Seed      int64  `mapstructure:"seed"`
	OutputDir string `mapstructure:"output-dir"`
	LogLevel  string `mapstructure:"log-level"`
	Stats     bool   `mapstructure:"stats"`
	Scenarios string `mapstructure:"scenarios"`
}

// Default returns the configuration used when no flags are set.
func Default() *Config {
	return &Config{
		OutputDir: "out",
		LogLevel:  "info",
	}
}

// RegisterFlags adds every Config field as a flag on flags, seeded with
// Default's values.
func RegisterFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.Int64("seed", def.Seed, "seed for the run's random number generator (default: drawn from crypto/rand)")
	flags.String("output-dir", def.OutputDir, "directory GML output files are written to")
	flags.String("log-level", def.LogLevel, "logging verbosity (panic, fatal, error, warn, info, debug, trace)")
	flags.Bool("stats", def.Stats, "print a summary of join/lookup/RPC counters after each run")
	flags.String("scenarios", "", "path to a YAML file describing a batch of runs, in place of positional m n k [num]")
}

// Load binds flags to Viper and unmarshals them into a Config.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling flags: %w", err)
	}
	return cfg, nil
}
