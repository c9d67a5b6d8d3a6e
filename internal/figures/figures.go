package figures

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/mkeller/ablate/internal/record"
)

// Matplotlib-named colors the original report figures used.
var (
	darkOrange   = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	steelBlue    = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	forestGreen  = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	mediumPurple = color.RGBA{R: 147, G: 112, B: 219, A: 255}
	seaGreen     = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	gray         = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	red          = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	green        = color.RGBA{R: 0, G: 128, B: 0, A: 255}
)

var activationColors = map[string]color.Color{
	"gelu":         darkOrange,
	"relu":         steelBlue,
	"relu_squared": forestGreen,
	"swish":        mediumPurple,
}

func keyColor(family, key, baseline string) color.Color {
	if family == "activation" {
		if c, ok := activationColors[key]; ok {
			return c
		}
		return gray
	}
	// Warmup bars are uniform except the highlighted baseline.
	if key == baseline {
		return darkOrange
	}
	return steelBlue
}

// WriteSummary renders the family's bar-chart figures into dir (created if
// absent): accuracy and time with error bars, a combined two-panel figure,
// and, for the activation family, the speedup chart. Each figure is written
// as PNG and PDF. Returns the paths written.
func WriteSummary(dir string, set *record.Set, family, baseline string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating figures dir: %w", err)
	}

	accName, timeName, combinedName := "accuracy_vs_warmup", "time_vs_warmup", "combined_results"
	if family == "activation" {
		accName, timeName, combinedName = "activation_accuracy", "activation_time", "activation_combined"
	}

	var written []string

	acc := accuracyPlot(set, family, baseline)
	paths, err := savePlot(acc, dir, accName, 10*vg.Inch, 6*vg.Inch)
	if err != nil {
		return written, err
	}
	written = append(written, paths...)

	tim := timePlot(set, family, baseline)
	paths, err = savePlot(tim, dir, timeName, 10*vg.Inch, 6*vg.Inch)
	if err != nil {
		return written, err
	}
	written = append(written, paths...)

	// The combined figure re-renders both panels side by side.
	paths, err = saveSideBySide(accuracyPlot(set, family, baseline), timePlot(set, family, baseline),
		dir, combinedName, 14*vg.Inch, 5*vg.Inch)
	if err != nil {
		return written, err
	}
	written = append(written, paths...)

	if family == "activation" {
		if _, ok := set.Get(baseline); ok {
			sp := speedupPlot(set, baseline)
			paths, err = savePlot(sp, dir, "activation_speedup", 10*vg.Inch, 6*vg.Inch)
			if err != nil {
				return written, err
			}
			written = append(written, paths...)
		}
	}
	return written, nil
}

func xLabel(family string) string {
	if family == "activation" {
		return "Activation Function"
	}
	return "Warmup Ratio"
}

func accuracyPlot(set *record.Set, family, baseline string) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Test Accuracy by " + xLabel(family)
	p.X.Label.Text = xLabel(family)
	p.Y.Label.Text = "Test Accuracy (%)"

	means := make([]float64, set.Len())
	stds := make([]float64, set.Len())
	for i, key := range set.Keys {
		means[i] = set.Records[key].MeanAcc * 100
		stds[i] = set.Records[key].StdAcc * 100
	}
	addBars(p, set, family, baseline, means, stds)

	if base, ok := set.Get(baseline); ok {
		addBaselineLine(p, base.MeanAcc*100, set.Len())
	}
	padRange(p, means, 0.5)
	return p
}

func timePlot(set *record.Set, family, baseline string) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Training Time by " + xLabel(family)
	p.X.Label.Text = xLabel(family)
	p.Y.Label.Text = "Training Time (s)"

	means := make([]float64, set.Len())
	stds := make([]float64, set.Len())
	for i, key := range set.Keys {
		means[i] = set.Records[key].MeanTime
		stds[i] = set.Records[key].StdTime
	}
	if family == "warmup" {
		addUniformBars(p, set, baseline, means, stds, seaGreen)
	} else {
		addBars(p, set, family, baseline, means, stds)
	}
	if base, ok := set.Get(baseline); ok {
		addBaselineLine(p, base.MeanTime, set.Len())
	}
	return p
}

func speedupPlot(set *record.Set, baseline string) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Training Speedup vs " + record.DisplayName(baseline)
	p.X.Label.Text = xLabel("activation")
	p.Y.Label.Text = fmt.Sprintf("Speedup vs %s (%%)", record.DisplayName(baseline))

	base := set.Records[baseline]
	speedups := make([]float64, set.Len())
	labels := make([]string, set.Len())
	for i, key := range set.Keys {
		speedups[i] = (base.MeanTime - set.Records[key].MeanTime) / base.MeanTime * 100
		labels[i] = fmt.Sprintf("%+.1f%%", speedups[i])
	}

	for i, v := range speedups {
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(40))
		if err != nil {
			continue
		}
		bar.XMin = float64(i)
		if v > 0 {
			bar.Color = green
		} else {
			bar.Color = red
		}
		bar.LineStyle.Width = vg.Points(1)
		p.Add(bar)
	}

	pts := make(plotter.XYs, set.Len())
	for i, v := range speedups {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	if lab, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels}); err == nil {
		p.Add(lab)
	}

	zero := plotter.XYs{{X: -0.5, Y: 0}, {X: float64(set.Len()) - 0.5, Y: 0}}
	if line, err := plotter.NewLine(zero); err == nil {
		line.Color = color.Black
		p.Add(line)
	}
	p.NominalX(displayNames(set)...)
	return p
}

// addBars draws one bar per key, colored per key, with std error bars.
func addBars(p *plot.Plot, set *record.Set, family, baseline string, means, stds []float64) {
	for i, key := range set.Keys {
		bar, err := plotter.NewBarChart(plotter.Values{means[i]}, vg.Points(40))
		if err != nil {
			continue
		}
		bar.XMin = float64(i)
		bar.Color = keyColor(family, key, baseline)
		bar.LineStyle.Width = vg.Points(1)
		p.Add(bar)
	}
	addErrorBars(p, means, stds)
	p.NominalX(displayNames(set)...)
}

func addUniformBars(p *plot.Plot, set *record.Set, baseline string, means, stds []float64, c color.Color) {
	for i, key := range set.Keys {
		bar, err := plotter.NewBarChart(plotter.Values{means[i]}, vg.Points(40))
		if err != nil {
			continue
		}
		bar.XMin = float64(i)
		bar.Color = c
		if key == baseline {
			bar.Color = darkOrange
		}
		bar.LineStyle.Width = vg.Points(1)
		p.Add(bar)
	}
	addErrorBars(p, means, stds)
	p.NominalX(displayNames(set)...)
}

type valueErrors struct {
	plotter.XYs
	errs []float64
}

func (v valueErrors) YError(i int) (float64, float64) {
	return v.errs[i], v.errs[i]
}

func addErrorBars(p *plot.Plot, means, stds []float64) {
	pts := make(plotter.XYs, len(means))
	for i := range means {
		pts[i] = plotter.XY{X: float64(i), Y: means[i]}
	}
	eb, err := plotter.NewYErrorBars(valueErrors{XYs: pts, errs: stds})
	if err != nil {
		return
	}
	eb.LineStyle.Width = vg.Points(1)
	p.Add(eb)
}

func addBaselineLine(p *plot.Plot, y float64, n int) {
	pts := plotter.XYs{{X: -0.5, Y: y}, {X: float64(n) - 0.5, Y: y}}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return
	}
	line.Color = red
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(line)
	p.Legend.Add("baseline", line)
	p.Legend.Top = true
}

func padRange(p *plot.Plot, values []float64, pad float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	p.Y.Min = lo - pad
	p.Y.Max = hi + pad
}

func displayNames(set *record.Set) []string {
	names := make([]string, set.Len())
	for i, key := range set.Keys {
		names[i] = record.DisplayName(key)
	}
	return names
}

// savePlot writes PNG and PDF renderings of a single plot.
func savePlot(p *plot.Plot, dir, name string, w, h vg.Length) ([]string, error) {
	png := filepath.Join(dir, name+".png")
	if err := p.Save(w, h, png); err != nil {
		return nil, fmt.Errorf("saving %s: %w", png, err)
	}
	pdf := filepath.Join(dir, name+".pdf")
	if err := p.Save(w, h, pdf); err != nil {
		return []string{png}, fmt.Errorf("saving %s: %w", pdf, err)
	}
	return []string{png, pdf}, nil
}

// saveSideBySide tiles two plots into one figure, PNG and PDF.
func saveSideBySide(left, right *plot.Plot, dir, name string, w, h vg.Length) ([]string, error) {
	plots := [][]*plot.Plot{{left, right}}
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4}

	pngPath := filepath.Join(dir, name+".png")
	img := vgimg.New(w, h)
	canvases := plot.Align(plots, tiles, draw.New(img))
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])
	f, err := os.Create(pngPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", pngPath, err)
	}
	pngc := vgimg.PngCanvas{Canvas: img}
	if _, err := pngc.WriteTo(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", pngPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	pdfPath := filepath.Join(dir, name+".pdf")
	pdf := vgpdf.New(w, h)
	canvases = plot.Align(plots, tiles, draw.New(pdf))
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])
	pf, err := os.Create(pdfPath)
	if err != nil {
		return []string{pngPath}, fmt.Errorf("creating %s: %w", pdfPath, err)
	}
	defer pf.Close()
	if _, err := pdf.WriteTo(pf); err != nil {
		return []string{pngPath}, fmt.Errorf("writing %s: %w", pdfPath, err)
	}
	return []string{pngPath, pdfPath}, nil
}
