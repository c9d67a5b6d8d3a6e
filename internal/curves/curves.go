package curves

import (
	"bufio"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Trainer log lines look like:
//
//	step:5100/5100 val_loss:3.2927 train_time:812253ms step_avg:159.58ms
var stepPattern = regexp.MustCompile(`step:(\d+)/\d+ val_loss:([\d.]+) train_time:(\d+)ms`)

// Point is one validation checkpoint extracted from a trainer log.
type Point struct {
	Step      int
	ValLoss   float64
	TrainTime float64 // seconds
}

type Run struct {
	File   string
	Points []Point
}

type Variant struct {
	Label string
	Runs  []Run
}

const (
	BaselineLabel = "Baseline (ReLU^2)"
	SwiGLULabel   = "SwiGLU"
)

// ParseLog extracts validation checkpoints from one log file. Lines that do
// not match the pattern are skipped.
func ParseLog(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	var points []Point
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := stepPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		step, _ := strconv.Atoi(m[1])
		valLoss, _ := strconv.ParseFloat(m[2], 64)
		timeMs, _ := strconv.ParseFloat(m[3], 64)
		points = append(points, Point{Step: step, ValLoss: valLoss, TrainTime: timeMs / 1000.0})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return points, nil
}

// CollectRuns finds .txt logs in dir whose filenames mention baseline or
// swiglu and groups their parsed runs by variant. A log with zero extracted
// points gets a warning and is dropped; it never aborts the batch.
func CollectRuns(dir string) ([]Variant, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}

	byLabel := map[string][]Run{}
	for _, path := range paths {
		name := filepath.Base(path)
		if !strings.Contains(name, "baseline") && !strings.Contains(name, "swiglu") {
			continue
		}
		label := BaselineLabel
		if strings.Contains(strings.ToLower(name), "swiglu") {
			label = SwiGLULabel
		}
		points, err := ParseLog(path)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			log.Printf("warning: no data found in %s", name)
			continue
		}
		byLabel[label] = append(byLabel[label], Run{File: name, Points: points})
	}

	var variants []Variant
	for _, label := range []string{BaselineLabel, SwiGLULabel} {
		if runs, ok := byLabel[label]; ok {
			variants = append(variants, Variant{Label: label, Runs: runs})
		}
	}
	return variants, nil
}

var variantColors = map[string]color.Color{
	BaselineLabel: color.RGBA{R: 30, G: 60, B: 200, A: 255},
	SwiGLULabel:   color.RGBA{R: 255, G: 140, B: 0, A: 255},
}

// WriteComparison renders the two-panel validation-loss figure: full
// training on top (skipping the first few points to avoid the init spike),
// a zoomed tail view below. Returns the written path.
func WriteComparison(figDir string, variants []Variant) (string, error) {
	if err := os.MkdirAll(figDir, 0o755); err != nil {
		return "", fmt.Errorf("creating figures dir: %w", err)
	}

	full := plot.New()
	full.Title.Text = "Validation Loss: Full Training"
	full.X.Label.Text = "Step"
	full.Y.Label.Text = "Validation Loss"
	for _, v := range variants {
		for i, run := range v.Runs {
			pts := run.Points
			if len(pts) > 5 {
				pts = pts[5:] // drop the init spike
			}
			addRunLine(full, v, pts, i == 0)
		}
	}

	zoom := plot.New()
	zoom.Title.Text = "Zoomed View (Steps > 2000)"
	zoom.X.Label.Text = "Step"
	zoom.Y.Label.Text = "Validation Loss"
	zoom.Y.Min = 3.25
	zoom.Y.Max = 3.6
	for _, v := range variants {
		for i, run := range v.Runs {
			var pts []Point
			for _, p := range run.Points {
				if p.Step > 2000 {
					pts = append(pts, p)
				}
			}
			addRunLine(zoom, v, pts, i == 0)
		}
	}

	path := filepath.Join(figDir, "gpt_comparison.png")
	img := vgimg.New(10*vg.Inch, 10*vg.Inch)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 4}
	plots := [][]*plot.Plot{{full}, {zoom}}
	canvases := plot.Align(plots, tiles, draw.New(img))
	full.Draw(canvases[0][0])
	zoom.Draw(canvases[1][0])

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// addRunLine draws one run: the first run of a variant solid and in the
// legend, repeats dashed.
func addRunLine(p *plot.Plot, v Variant, pts []Point, first bool) {
	if len(pts) == 0 {
		return
	}
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: float64(pt.Step), Y: pt.ValLoss}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return
	}
	c, ok := variantColors[v.Label]
	if !ok {
		c = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	line.Color = c
	if !first {
		line.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	}
	p.Add(line)
	if first {
		p.Legend.Add(v.Label, line)
		p.Legend.Top = true
	}
}
