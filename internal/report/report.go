package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mkeller/ablate/internal/record"
	"github.com/mkeller/ablate/internal/stats"
)

// PrintSummary renders the per-key mean/std table. The baseline row gets a
// "*" marker. When annotateDiffs is set, non-baseline rows carry the raw
// accuracy delta next to the mean.
func PrintSummary(w io.Writer, set *record.Set, baseline string, annotateDiffs bool) error {
	base, haveBase := set.Get(baseline)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VALUE\tMEAN ACC (%)\tSTD ACC\tMEAN TIME (S)\tSTD TIME\tRUNS")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, key := range set.Keys {
		rec := set.Records[key]
		marker := ""
		if key == baseline {
			marker = " *"
		}
		accCell := fmt.Sprintf("%.2f", rec.MeanAcc*100)
		if annotateDiffs && haveBase && key != baseline {
			diff := (rec.MeanAcc - base.MeanAcc) * 100
			accCell = fmt.Sprintf("%.2f (%+.2f)", rec.MeanAcc*100, diff)
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%.2f\t%.2f\t%.2f\t%d\n",
			record.DisplayName(key), marker, accCell,
			rec.StdAcc*100, rec.MeanTime, rec.StdTime, rec.NumRuns)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if haveBase {
		fmt.Fprintf(w, "* = baseline (%s)\n", record.DisplayName(baseline))
	}
	return nil
}

// PrintComparisons renders the statistical comparison table produced by
// stats.Compare.
func PrintComparisons(w io.Writer, comps []stats.Comparison, baseline string) error {
	fmt.Fprintf(w, "Statistical analysis vs baseline %s (significance level: p < %.2f)\n",
		record.DisplayName(baseline), stats.SignificanceLevel)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VALUE\tACC DIFF\tTIME DIFF\tT-STAT (ACC)\tP-VALUE\tSIGNIFICANT")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, c := range comps {
		sig := "NO"
		if c.Significant {
			sig = "YES"
		}
		fmt.Fprintf(tw, "%s\t%+.3f%%\t%+.3fs\t%.3f\t%.4f\t%s\n",
			record.DisplayName(c.Key), c.AccDiff, c.TimeDiff, c.Acc.T, c.Acc.P, sig)
	}
	return tw.Flush()
}

// ExportCSV writes one row per key with all summary scalars. Floats are
// formatted so that parsing them back reproduces the exact values.
func ExportCSV(path string, set *record.Set, keyColumn string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating csv dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{keyColumn, "mean_acc", "std_acc", "mean_time", "std_time", "num_runs"}); err != nil {
		return err
	}
	for _, key := range set.Keys {
		rec := set.Records[key]
		row := []string{
			key,
			formatFloat(rec.MeanAcc),
			formatFloat(rec.StdAcc),
			formatFloat(rec.MeanTime),
			formatFloat(rec.StdTime),
			strconv.Itoa(rec.NumRuns),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PrintLaTeX emits a booktabs table mirroring the summary: baseline row in
// bold with "baseline" in the speedup column, significant rows (per the
// comparator) marked with $^*$. Without a baseline the speedup column and
// markers are omitted row by row.
func PrintLaTeX(w io.Writer, set *record.Set, comps []stats.Comparison, baseline, caption string) {
	byKey := stats.ByKey(comps)
	base, haveBase := set.Get(baseline)

	fmt.Fprintln(w, `\begin{table}[h]`)
	fmt.Fprintln(w, `\centering`)
	fmt.Fprintf(w, "\\caption{%s}\n", caption)
	fmt.Fprintln(w, `\begin{tabular}{lcccc}`)
	fmt.Fprintln(w, `\toprule`)
	fmt.Fprintln(w, `Value & Mean Acc (\%) & Std (\%) & Mean Time (s) & Speedup \\`)
	fmt.Fprintln(w, `\midrule`)
	for _, key := range set.Keys {
		rec := set.Records[key]
		name := latexName(key)
		if key == baseline {
			fmt.Fprintf(w, "\\textbf{%s} & \\textbf{%.2f} & \\textbf{%.2f} & \\textbf{%.2f} & baseline \\\\\n",
				name, rec.MeanAcc*100, rec.StdAcc*100, rec.MeanTime)
			continue
		}
		speedup := ""
		if haveBase {
			s := (base.MeanTime - rec.MeanTime) / base.MeanTime * 100
			speedup = fmt.Sprintf("%+.1f\\%%", s)
			if c, ok := byKey[key]; ok && c.Significant {
				speedup += "$^*$"
			}
		}
		fmt.Fprintf(w, "%s & %.2f & %.2f & %.2f & %s \\\\\n",
			name, rec.MeanAcc*100, rec.StdAcc*100, rec.MeanTime, speedup)
	}
	fmt.Fprintln(w, `\bottomrule`)
	fmt.Fprintln(w, `\end{tabular}`)
	fmt.Fprintln(w, `\end{table}`)
}

// latexName swaps the unicode superscript for LaTeX math.
func latexName(key string) string {
	if key == "relu_squared" {
		return `ReLU$^2$`
	}
	return record.DisplayName(key)
}
