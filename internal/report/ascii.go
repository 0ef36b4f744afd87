package report

import "github.com/guptarohit/asciigraph"

// ASCII renders values as a terminal line chart. Empty input renders as "".
func ASCII(values []float64, caption string, height int) string {
	if len(values) == 0 {
		return ""
	}
	if height <= 0 {
		height = 10
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// ASCIIMany overlays several equally sampled series.
func ASCIIMany(series [][]float64, caption string, height int) string {
	var data [][]float64
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return ""
	}
	if height <= 0 {
		height = 10
	}
	colors := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Yellow}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors[:min(len(data), len(colors))]...),
	)
}
