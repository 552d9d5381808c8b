package simulator

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

// Scenario is one network to build: its size parameters, how many
// independent runs to produce, and the seed of the random number generator
// all of its runs draw from in turn (each run continues the stream where
// the previous one stopped), so a scenario file is itself reproducible end
// to end.
type Scenario struct {
	M    int   `yaml:"m"`
	N    int   `yaml:"n"`
	K    int   `yaml:"k"`
	Num  int   `yaml:"num"`
	Seed int64 `yaml:"seed"`
}

// scenarioFile is the top-level shape of a --scenarios YAML document.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios decodes a batch of scenarios from r.
func LoadScenarios(r io.Reader) ([]Scenario, error) {
	var file scenarioFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("simulator: decoding scenario file: %w", err)
	}

	for i, s := range file.Scenarios {
		if s.M <= 0 || s.N <= 0 || s.K <= 0 {
			return nil, fmt.Errorf("simulator: scenario %d: m, n, k must all be positive (got m=%d, n=%d, k=%d): %w", i, s.M, s.N, s.K, simerr.ErrInvalidArgument)
		}
		if s.Num <= 0 {
			file.Scenarios[i].Num = 1
		}
	}

	return file.Scenarios, nil
}
