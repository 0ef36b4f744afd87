package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/pidtune/internal/storage"
)

const dpi = 150

// Series is one labelled curve.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

// EvolutionPNG writes one plot per gain and one for fitness, each against
// the generation index, and returns the written paths.
func EvolutionPNG(dir string, history []storage.HistoryRow) ([]string, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("report: empty history")
	}

	gens := make([]float64, len(history))
	columns := map[string][]float64{
		"Kp":      make([]float64, len(history)),
		"Ki":      make([]float64, len(history)),
		"Kd":      make([]float64, len(history)),
		"Fitness": make([]float64, len(history)),
	}
	for i, h := range history {
		gens[i] = float64(h.Generation)
		columns["Kp"][i] = h.Kp
		columns["Ki"][i] = h.Ki
		columns["Kd"][i] = h.Kd
		columns["Fitness"][i] = h.Fitness
	}

	var paths []string
	for i, name := range []string{"Kp", "Ki", "Kd", "Fitness"} {
		p := plot.New()
		p.Title.Text = "Evolution of " + name
		p.X.Label.Text = "Generation"
		p.Y.Label.Text = name
		p.Add(plotter.NewGrid())

		line, err := newLine(gens, columns[name])
		if err != nil {
			return paths, err
		}
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)

		path := filepath.Join(dir, name+"_evolution.png")
		if err := savePNG(p, 8, 5, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// StepPNG overlays step responses with a unit setpoint reference.
func StepPNG(path, title string, responses ...Series) error {
	if len(responses) == 0 {
		return fmt.Errorf("report: no responses to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Output"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	end := 0.0
	for i, r := range responses {
		line, err := newLine(r.X, r.Y)
		if err != nil {
			return fmt.Errorf("report: %s: %w", r.Label, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(r.Label, line)
		if n := len(r.X); n > 0 && r.X[n-1] > end {
			end = r.X[n-1]
		}
	}

	ref, err := newLine([]float64{0, end}, []float64{1, 1})
	if err != nil {
		return err
	}
	ref.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ref)
	p.Legend.Add("setpoint", ref)

	return savePNG(p, 8, 5, path)
}

func newLine(x, y []float64) (*plotter.Line, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("report: %d x values for %d y values", len(x), len(y))
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return plotter.NewLine(pts)
}

func savePNG(p *plot.Plot, widthIn, heightIn float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
