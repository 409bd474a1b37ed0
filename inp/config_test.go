package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfigJSON = `{
	"desc": "diblock melt",
	"seed": 7,
	"grid": {"n": [8, 8, 8], "delta": [1, 1, 1]},
	"physfields": [{"name": "A"}, {"name": "B"}],
	"polymers": [{
		"name": "diblock", "volfrac": 1.0, "n": 1.0,
		"blocks": [
			{"name": "blockA", "physfield": "A", "f": 0.5, "ds": 0.01, "headjoined": ["freeEnd"], "tailjoined": ["blockB"]},
			{"name": "blockB", "physfield": "B", "f": 0.5, "ds": 0.01, "headjoined": ["blockA"], "tailjoined": ["freeEnd"]}
		]
	}],
	"interactions": [{"name": "AB", "type": "flory", "fielda": "A", "fieldb": "B", "chin": 20}],
	"updater": {"fieldnames": ["A", "B"], "lambda0": 0.01, "lambda1": 0.005},
	"nsteps": 100,
	"dumpperiod": 10
}`

// TestReadConfigRoundTrip checks that ReadConfig decodes every block, fills
// conventional defaults, and derives Key/DirOut, mirroring inp.ReadSim's
// contract against the teacher's .sim fixtures.
func TestReadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diblock.scft")
	if err := os.WriteFile(path, []byte(sampleConfigJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	if cfg.Key != "diblock" {
		t.Fatalf("expected Key %q, got %q", "diblock", cfg.Key)
	}
	if cfg.DirOut == "" {
		t.Fatalf("expected a derived DirOut, got empty string")
	}
	if len(cfg.PhysFields) != 2 {
		t.Fatalf("expected 2 physfields, got %d", len(cfg.PhysFields))
	}
	if len(cfg.Polymers) != 1 || len(cfg.Polymers[0].Blocks) != 2 {
		t.Fatalf("expected 1 polymer with 2 blocks, got %+v", cfg.Polymers)
	}
	blockA := cfg.Polymers[0].Blocks[0]
	if blockA.B != 1.0 {
		t.Fatalf("expected SetDefault to fill B=1.0, got %g", blockA.B)
	}
	if blockA.QuadWeight != 1.0 {
		t.Fatalf("expected SetDefault to fill QuadWeight=1.0, got %g", blockA.QuadWeight)
	}
	if cfg.NSteps != 100 || cfg.DumpPeriod != 10 {
		t.Fatalf("expected nsteps=100 dumpperiod=10, got %d %d", cfg.NSteps, cfg.DumpPeriod)
	}
}

// TestConfigPostProcessRejectsBadVolFracSum checks the §7 configuration
// error: volume fractions must sum to 1 within tolerance.
func TestConfigPostProcessRejectsBadVolFracSum(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(sampleConfigJSON), &cfg); err != nil {
		t.Fatal(err)
	}
	cfg.Polymers[0].VolFrac = 0.5 // sum now 0.5, not 1

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected PostProcess to panic on a bad volume-fraction sum")
		}
	}()
	cfg.PostProcess()
}

// TestInteractionPostProcessRejectsChiNAndChiFunc checks the mutually
// exclusive chin/chifunc configuration error (spec.md §4.4, §7).
func TestInteractionPostProcessRejectsChiNAndChiFunc(t *testing.T) {
	ic := &InteractionConfig{Name: "AB", Type: "flory", ChiN: 20, ChiFunc: "ramp"}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected PostProcess to panic when both chin and chifunc are set")
		}
	}()
	ic.PostProcess()
}
