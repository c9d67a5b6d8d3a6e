package report_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/mkeller/ablate/internal/record"
	"github.com/mkeller/ablate/internal/report"
	"github.com/mkeller/ablate/internal/stats"
)

func ratio(v float64) *float64 { return &v }

func activationSet() *record.Set {
	set := record.NewSet()
	set.Add("gelu", &record.RunRecord{
		Activation: "gelu",
		Accs:       []float64{0.940, 0.941},
		Times:      []float64{5.0, 5.1},
		MeanAcc:    0.9405, StdAcc: 0.0007, MeanTime: 5.05, StdTime: 0.07, NumRuns: 2,
	})
	set.Add("relu", &record.RunRecord{
		Activation: "relu",
		Accs:       []float64{0.935, 0.936},
		Times:      []float64{4.6, 4.7},
		MeanAcc:    0.9355, StdAcc: 0.0007, MeanTime: 4.65, StdTime: 0.07, NumRuns: 2,
	})
	return set
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := report.PrintSummary(&buf, activationSet(), "gelu", false); err != nil {
		t.Fatalf("PrintSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"GELU *", "ReLU", "94.05", "* = baseline (GELU)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryAnnotatesDiffs(t *testing.T) {
	var buf bytes.Buffer
	if err := report.PrintSummary(&buf, activationSet(), "gelu", true); err != nil {
		t.Fatalf("PrintSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "(-0.50)") {
		t.Errorf("expected accuracy delta annotation, got:\n%s", buf.String())
	}
}

func TestPrintSummaryWithoutBaseline(t *testing.T) {
	var buf bytes.Buffer
	if err := report.PrintSummary(&buf, activationSet(), "relu_squared", false); err != nil {
		t.Fatalf("PrintSummary: %v", err)
	}
	if strings.Contains(buf.String(), "* = baseline") {
		t.Error("did not expect baseline footnote without a baseline row")
	}
}

func TestPrintComparisons(t *testing.T) {
	comps := []stats.Comparison{
		{Key: "relu", AccDiff: -0.5, TimeDiff: -0.4, Acc: stats.TestResult{T: -5.4, P: 0.0016}, Significant: true},
		{Key: "swish", AccDiff: 0.02, TimeDiff: 0.03, Acc: stats.TestResult{T: 0.3, P: 0.78}},
	}
	var buf bytes.Buffer
	if err := report.PrintComparisons(&buf, comps, "gelu"); err != nil {
		t.Fatalf("PrintComparisons: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "YES") || !strings.Contains(out, "NO") {
		t.Errorf("expected significance flags in output:\n%s", out)
	}
	if !strings.Contains(out, "p < 0.05") {
		t.Errorf("expected significance level in header:\n%s", out)
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	set := record.NewSet()
	set.Add("0.23", &record.RunRecord{
		WarmupRatio: ratio(0.23),
		Accs:        []float64{0.94, 0.95},
		Times:       []float64{5.0, 5.1},
		MeanAcc:     0.9412345678901234,
		StdAcc:      0.0007071067811865476,
		MeanTime:    5.033333333333333,
		StdTime:     0.07071067811865475,
		NumRuns:     2,
	})

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := report.ExportCSV(path, set, "warmup_ratio"); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	wantHeader := []string{"warmup_ratio", "mean_acc", "std_acc", "mean_time", "std_time", "num_runs"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d]: got %q, want %q", i, rows[0][i], col)
		}
	}

	rec := set.Records["0.23"]
	wantFloats := []float64{rec.MeanAcc, rec.StdAcc, rec.MeanTime, rec.StdTime}
	for i, want := range wantFloats {
		got, err := strconv.ParseFloat(rows[1][i+1], 64)
		if err != nil {
			t.Fatalf("parsing float column %d: %v", i+1, err)
		}
		if got != want {
			t.Errorf("column %d: got %v, want %v (round trip must be exact)", i+1, got, want)
		}
	}
	if rows[1][5] != "2" {
		t.Errorf("num_runs: got %q, want 2", rows[1][5])
	}
}

func TestPrintLaTeX(t *testing.T) {
	set := activationSet()
	set.Add("relu_squared", &record.RunRecord{
		Activation: "relu_squared",
		Accs:       []float64{0.941, 0.942},
		Times:      []float64{4.4, 4.5},
		MeanAcc:    0.9415, StdAcc: 0.0007, MeanTime: 4.45, StdTime: 0.07, NumRuns: 2,
	})
	set.Reorder(record.ActivationOrder)

	comps := []stats.Comparison{
		{Key: "relu", Significant: false},
		{Key: "relu_squared", Significant: true},
	}

	var buf bytes.Buffer
	report.PrintLaTeX(&buf, set, comps, "gelu", "Activation Function Ablation Results")
	out := buf.String()

	for _, want := range []string{
		`\textbf{GELU}`,
		`ReLU$^2$`,
		`$^*$`,
		"baseline",
		`\toprule`,
		`\bottomrule`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("LaTeX output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ReLU²") {
		t.Error("unicode superscript leaked into LaTeX output")
	}
}

func TestPrintLaTeXWithoutBaseline(t *testing.T) {
	set := activationSet()
	var buf bytes.Buffer
	report.PrintLaTeX(&buf, set, nil, "relu_squared", "caption")
	out := buf.String()
	if strings.Contains(out, `\textbf`) {
		t.Error("did not expect a bold row without the baseline present")
	}
	if strings.Contains(out, "$^*$") {
		t.Error("did not expect significance markers without comparisons")
	}
}
