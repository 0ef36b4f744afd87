package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/pidtune/internal/storage"
)

func TestEvolutionPNG(t *testing.T) {
	dir := t.TempDir()
	history := []storage.HistoryRow{
		{Generation: 0, Kp: 1, Ki: 0.1, Kd: 0, Fitness: 50},
		{Generation: 1, Kp: 2, Ki: 0.2, Kd: 0.1, Fitness: 70},
		{Generation: 2, Kp: 2.5, Ki: 0.2, Kd: 0.1, Fitness: 80},
	}

	paths, err := EvolutionPNG(dir, history)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 plots, got %d", len(paths))
	}
	for _, name := range []string{"Kp", "Ki", "Kd", "Fitness"} {
		info, err := os.Stat(filepath.Join(dir, name+"_evolution.png"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Errorf("%s plot is empty", name)
		}
	}

	if _, err := EvolutionPNG(dir, nil); err == nil {
		t.Error("expected error for empty history")
	}
}

func TestStepPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "step.png")
	ga := Series{Label: "ga", X: []float64{0, 1, 2}, Y: []float64{0, 0.8, 1}}
	zn := Series{Label: "zn", X: []float64{0, 1, 2}, Y: []float64{0, 1.2, 1}}

	if err := StepPNG(path, "Step response", ga, zn); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not a PNG")
	}

	if err := StepPNG(path, "none"); err == nil {
		t.Error("expected error without responses")
	}
	bad := Series{Label: "bad", X: []float64{0, 1}, Y: []float64{0}}
	if err := StepPNG(path, "bad", bad); err == nil {
		t.Error("expected error for mismatched series")
	}
}

func TestASCII(t *testing.T) {
	if got := ASCII(nil, "empty", 5); got != "" {
		t.Errorf("expected empty chart, got %q", got)
	}

	chart := ASCII([]float64{1, 2, 3, 2, 1}, "fitness", 5)
	if !strings.Contains(chart, "fitness") {
		t.Errorf("caption missing from chart:\n%s", chart)
	}

	many := ASCIIMany([][]float64{{0, 1, 1}, {0, 1.2, 1}, nil}, "step", 5)
	if !strings.Contains(many, "step") {
		t.Errorf("caption missing from chart:\n%s", many)
	}
	if ASCIIMany([][]float64{nil}, "x", 5) != "" {
		t.Error("expected empty chart")
	}
}
