package main

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deselmo/kademlia-simulator/internal/config"
	"github.com/deselmo/kademlia-simulator/internal/simulator"
	"github.com/deselmo/kademlia-simulator/internal/stats"
)

var log = logrus.New()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "simulator m n k [num]",
		Short:         "Build simulated Kademlia networks and export them as GML graphs",
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
			}
			log.SetLevel(level)

			if cfg.Scenarios != "" {
				if len(args) > 0 {
					return fmt.Errorf("--scenarios cannot be combined with positional m n k [num] arguments")
				}
				return runScenarioFile(cfg)
			}
			return runPositional(cfg, args)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func runPositional(cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("expected m n k [num], got %d argument(s)", len(args))
	}

	m, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid m %q: %w", args[0], err)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid n %q: %w", args[1], err)
	}
	k, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid k %q: %w", args[2], err)
	}

	num := 1
	if len(args) == 4 {
		num, err = strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid num %q: %w", args[3], err)
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		var err error
		seed, err = randomSeed()
		if err != nil {
			return fmt.Errorf("generating random seed: %w", err)
		}
	}

	return runScenario(cfg, simulator.Scenario{M: m, N: n, K: k, Num: num, Seed: seed})
}

// randomSeed draws a seed from crypto/rand so that omitting --seed
// produces a non-deterministic run by default, matching the reference
// simulator's unseeded RNG.
func randomSeed() (int64, error) {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func runScenarioFile(cfg *config.Config) error {
	f, err := os.Open(cfg.Scenarios)
	if err != nil {
		return fmt.Errorf("opening scenario file: %w", err)
	}
	defer f.Close()

	scenarios, err := simulator.LoadScenarios(f)
	if err != nil {
		return err
	}

	for _, s := range scenarios {
		if err := runScenario(cfg, s); err != nil {
			return err
		}
	}
	return nil
}

func runScenario(cfg *config.Config, s simulator.Scenario) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	rng := rand.New(rand.NewSource(s.Seed))

	for i := 0; i < s.Num; i++ {
		var collector *stats.Collector
		if cfg.Stats {
			collector = stats.NewCollector()
		}

		coord, err := simulator.New(s.M, s.N, s.K, rng, collector)
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{"m": s.M, "n": s.N, "k": s.K, "run": i}).Info("building network")

		if err := coord.Run(); err != nil {
			return err
		}

		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("m%d_n%d_k%d__%d.gml", s.M, s.N, s.K, i+1))
		if err := writeGML(coord, path); err != nil {
			return err
		}

		log.WithField("path", path).Info("wrote network")

		if collector != nil {
			logRunStats(collector)
		}
	}

	return nil
}

func writeGML(coord *simulator.Coordinator, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	writeErr := coord.GML(out)
	closeErr := out.Close()
	if writeErr != nil {
		return fmt.Errorf("writing GML: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing output file: %w", closeErr)
	}
	return nil
}

func logRunStats(collector *stats.Collector) {
	summary := collector.Summary()
	log.WithFields(logrus.Fields{
		"joins":         summary.Joins,
		"lookup_rounds": summary.LookupRounds,
		"rpcs":          summary.RPCs,
		"elapsed":       summary.Elapsed,
	}).Info("run statistics")
}
