package simulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/deselmo/kademlia-simulator/internal/simerr"
)

func TestLoadScenarios_ParsesAndDefaultsNum(t *testing.T) {
	t.Parallel()

	doc := `
scenarios:
  - m: 16
    n: 10
    k: 3
    seed: 1
  - m: 20
    n: 50
    k: 4
    num: 3
    seed: 2
`
	scenarios, err := LoadScenarios(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadScenarios: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("LoadScenarios returned %d scenarios, want 2", len(scenarios))
	}
	if scenarios[0].Num != 1 {
		t.Fatalf("scenarios[0].Num = %d, want default of 1", scenarios[0].Num)
	}
	if scenarios[1].Num != 3 {
		t.Fatalf("scenarios[1].Num = %d, want 3", scenarios[1].Num)
	}
}

func TestLoadScenarios_RejectsNonPositiveParameters(t *testing.T) {
	t.Parallel()

	doc := `
scenarios:
  - m: 0
    n: 10
    k: 3
`
	if _, err := LoadScenarios(strings.NewReader(doc)); !errors.Is(err, simerr.ErrInvalidArgument) {
		t.Fatalf("LoadScenarios: want ErrInvalidArgument, got %v", err)
	}
}
