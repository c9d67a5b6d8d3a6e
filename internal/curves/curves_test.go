package curves_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkeller/ablate/internal/curves"
)

func TestParseLogLiteralLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline_1.txt")
	content := "step:5100/5100 val_loss:3.2927 train_time:812253ms step_avg:159.58ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	points, err := curves.ParseLog(path)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0]
	if p.Step != 5100 {
		t.Errorf("step: got %d, want 5100", p.Step)
	}
	if p.ValLoss != 3.2927 {
		t.Errorf("val_loss: got %v, want 3.2927", p.ValLoss)
	}
	if math.Abs(p.TrainTime-812.253) > 1e-9 {
		t.Errorf("train_time: got %v, want 812.253", p.TrainTime)
	}
}

func TestParseLogSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline_2.txt")
	content := `starting training run
step:100/5100 train_time:15000ms step_avg:150.00ms
step:250/5100 val_loss:4.1052 train_time:39000ms step_avg:156.00ms
some unrelated output
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	points, err := curves.ParseLog(path)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	// Only the line carrying val_loss yields a point.
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Step != 250 {
		t.Errorf("step: got %d, want 250", points[0].Step)
	}
}

func TestCollectRuns(t *testing.T) {
	dir := t.TempDir()
	line := "step:250/5100 val_loss:4.1052 train_time:39000ms step_avg:156.00ms\n"
	files := map[string]string{
		"baseline_run1.txt": line,
		"swiglu_run1.txt":   line,
		"swiglu_run2.txt":   line,
		"other_model.txt":   line, // ignored: neither baseline nor swiglu
		"baseline_bad.txt":  "no parseable lines here\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	variants, err := curves.CollectRuns(dir)
	if err != nil {
		t.Fatalf("CollectRuns: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants[0].Label != curves.BaselineLabel {
		t.Errorf("first variant: got %q, want %q", variants[0].Label, curves.BaselineLabel)
	}
	if len(variants[0].Runs) != 1 {
		t.Errorf("baseline runs: got %d, want 1 (empty log must be dropped)", len(variants[0].Runs))
	}
	if variants[1].Label != curves.SwiGLULabel || len(variants[1].Runs) != 2 {
		t.Errorf("swiglu variant: got %q with %d runs", variants[1].Label, len(variants[1].Runs))
	}
}

func TestCollectRunsEmptyDir(t *testing.T) {
	variants, err := curves.CollectRuns(t.TempDir())
	if err != nil {
		t.Fatalf("CollectRuns: %v", err)
	}
	if len(variants) != 0 {
		t.Errorf("expected no variants, got %d", len(variants))
	}
}

func TestWriteComparison(t *testing.T) {
	figDir := t.TempDir()
	variants := []curves.Variant{
		{
			Label: curves.BaselineLabel,
			Runs: []curves.Run{{
				File: "baseline_run1.txt",
				Points: []curves.Point{
					{Step: 250, ValLoss: 4.1, TrainTime: 39},
					{Step: 2500, ValLoss: 3.5, TrainTime: 390},
					{Step: 5100, ValLoss: 3.29, TrainTime: 812},
				},
			}},
		},
		{
			Label: curves.SwiGLULabel,
			Runs: []curves.Run{{
				File: "swiglu_run1.txt",
				Points: []curves.Point{
					{Step: 250, ValLoss: 4.2, TrainTime: 40},
					{Step: 2500, ValLoss: 3.55, TrainTime: 400},
					{Step: 5100, ValLoss: 3.31, TrainTime: 820},
				},
			}},
		},
	}

	path, err := curves.WriteComparison(figDir, variants)
	if err != nil {
		t.Fatalf("WriteComparison: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat figure: %v", err)
	}
	if info.Size() == 0 {
		t.Error("figure file is empty")
	}
}
