package domain

import (
	"os"
	"testing"

	"github.com/polyswift-go/scftcore/inp"
)

func diblockConfig() *inp.Config {
	return &inp.Config{
		Seed: 1,
		Grid: inp.GridConfig{N: []int{8, 8, 8}, Delta: []float64{1, 1, 1}},
		PhysFields: []*inp.PhysFieldConfig{
			{Name: "A"},
			{Name: "B"},
		},
		Polymers: []*inp.PolymerConfig{
			{
				Name: "diblock", VolFrac: 1.0, N: 1.0,
				Blocks: []*inp.BlockConfig{
					{Name: "blockA", PhysField: "A", F: 0.5, Ds: 0.01, B: 1, HeadJoined: []string{"freeEnd"}, TailJoined: []string{"blockB"}},
					{Name: "blockB", PhysField: "B", F: 0.5, Ds: 0.01, B: 1, HeadJoined: []string{"blockA"}, TailJoined: []string{"freeEnd"}},
				},
			},
		},
		Interactions: []*inp.InteractionConfig{
			{Name: "AB", Type: "flory", FieldA: "A", FieldB: "B", ChiN: 20},
		},
		Updater: inp.UpdaterConfig{FieldNames: []string{"A", "B"}, Lambda0: 0.01, Lambda1: 0.005},
	}
}

// TestDomainStepRuns exercises the full build + one-step control flow
// without panicking, and checks the §8 mass-conservation invariant on a
// simple diblock melt with no constraint field.
func TestDomainStepRuns(t *testing.T) {
	cfg := diblockConfig()
	d, err := Build(cfg, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d.Step()

	total := 0.0
	for _, name := range []string{"A", "B"} {
		total += d.PhysFields[name].GetDensField().Mean()
	}
	if diff := total - 1.0; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("mass conservation violated: sum of mean densities = %g", total)
	}
}

// TestRestartEquivalence is the §8 restart-equivalence scenario: dump at
// step K, restore into a fresh domain, run both to step 2K, and compare
// densities.
func TestRestartEquivalence(t *testing.T) {
	dir, err := os.MkdirTemp("", "scftdump-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	sink := NewFlatFileDumpSink(dir)

	cfgA := diblockConfig()
	domA, err := Build(cfgA, false)
	if err != nil {
		t.Fatalf("Build A: %v", err)
	}
	for i := 0; i < 2; i++ {
		domA.Step()
	}
	if err := domA.Dump(sink); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	for i := 0; i < 2; i++ {
		domA.Step()
	}

	cfgB := diblockConfig()
	domB, err := Build(cfgB, false)
	if err != nil {
		t.Fatalf("Build B: %v", err)
	}
	if err := domB.Restore(sink, 2); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for i := 0; i < 2; i++ {
		domB.Step()
	}

	for _, name := range []string{"A", "B"} {
		da := domA.PhysFields[name].GetDensField().Data
		db := domB.PhysFields[name].GetDensField().Data
		for i := range da {
			if diff := da[i] - db[i]; diff > 1e-6 || diff < -1e-6 {
				t.Fatalf("field %q cell %d diverged after restart: %g vs %g", name, i, da[i], db[i])
			}
		}
	}
}
