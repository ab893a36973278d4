package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/wrsn/core/scheduler"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadAppliesFieldDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	data := []byte("name: defaults\nsimulation:\n  policy: threshold\n  threshold_pct: 20\n  max_cycles: 2\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Simulation.Policy != scheduler.PolicyThreshold || sc.Simulation.ThresholdPct != 20 {
		t.Fatalf("unexpected simulation %+v", sc.Simulation)
	}
	cfg := sc.Config()
	if cfg.Field.Width != 20 || cfg.Field.MasterCapacity != 60 {
		t.Fatalf("field defaults not applied: %+v", cfg.Field)
	}
}

func TestLoadRejectsUnnamedScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	if err := os.WriteFile(path, []byte("simulation:\n  max_cycles: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for scenario without name")
	}
}
