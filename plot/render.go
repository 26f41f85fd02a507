package plot

import (
	"bytes"
	"errors"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stenstromen/healthviz/dataset"
)

var (
	seriesColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	fillColor   = drawing.Color{R: 31, G: 119, B: 180, A: 100}
	kdeColor    = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

// pointStyle draws markers only, no connecting line.
func pointStyle() chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    seriesColor,
	}
}

func lineStyle() chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: seriesColor,
	}
}

func titleStyle() chart.Style {
	return chart.Style{FontSize: 12}
}

func tickStyle() chart.Style {
	return chart.Style{FontSize: 10}
}

// padded widens a degenerate range so the renderer accepts it.
func padded(vs []float64) chart.Range {
	lo, hi := minMax(vs)
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// xLabel draws name centred under the plot area. BarChart only takes a style
// for its x axis, so the axis name is drawn as an extra element.
func xLabel(name string) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		if name == "" {
			return
		}
		style := chart.Style{FontSize: 10, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		tb := chart.Draw.MeasureText(r, name, style)
		x := canvas.Left + canvas.Width()/2 - tb.Width()/2
		chart.Draw.Text(r, name, x, DefaultHeight-barLabelMargin, style)
	}
}

const barLabelMargin = 12

func categoryTicks(categories []string) []chart.Tick {
	ticks := make([]chart.Tick, len(categories))
	for i, c := range categories {
		ticks[i] = chart.Tick{Value: float64(i), Label: c}
	}
	return ticks
}

func xAxisFor(fig *Figure, x axis, xs []float64) chart.XAxis {
	xa := chart.XAxis{Name: fig.XLabel, Style: tickStyle(), Range: padded(xs)}
	if x.categorical() {
		n := float64(len(x.categories))
		xa.Range = &chart.ContinuousRange{Min: -0.5, Max: n - 0.5}
		xa.Ticks = categoryTicks(x.categories)
	}
	return xa
}

func renderXY(fig *Figure, xa chart.XAxis, ys []float64, series ...chart.Series) ([]byte, error) {
	ch := chart.Chart{
		Title:      fig.Title,
		TitleStyle: titleStyle(),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xa,
		YAxis:      chart.YAxis{Name: fig.YLabel, Style: tickStyle(), Range: padded(ys)},
		Series:     series,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xyAxes(xcells, ycells []dataset.Value) (axis, []float64, []float64, error) {
	x, err := newAxis(xcells)
	if err != nil {
		return axis{}, nil, nil, err
	}
	y, err := numericAxis(ycells, "y")
	if err != nil {
		return axis{}, nil, nil, err
	}
	xs, ys := pairs(x, y)
	if len(xs) == 0 {
		return axis{}, nil, nil, errors.New("no complete rows to plot")
	}
	return x, xs, ys, nil
}

func renderLine(fig *Figure, xcells, ycells []dataset.Value) ([]byte, error) {
	x, xs, ys, err := xyAxes(xcells, ycells)
	if err != nil {
		return nil, err
	}
	xs, ys = meanByX(xs, ys)
	return renderXY(fig, xAxisFor(fig, x, xs), ys, chart.ContinuousSeries{
		Name:    fig.YLabel,
		Style:   lineStyle(),
		XValues: xs,
		YValues: ys,
	})
}

func renderScatter(fig *Figure, xcells, ycells []dataset.Value) ([]byte, error) {
	x, xs, ys, err := xyAxes(xcells, ycells)
	if err != nil {
		return nil, err
	}
	return renderXY(fig, xAxisFor(fig, x, xs), ys, chart.ContinuousSeries{
		Name:    fig.YLabel,
		Style:   pointStyle(),
		XValues: xs,
		YValues: ys,
	})
}

func renderDistribution(fig *Figure, xcells []dataset.Value) ([]byte, error) {
	x, err := numericAxis(xcells, "x")
	if err != nil {
		return nil, err
	}
	var vs []float64
	for i, v := range x.values {
		if x.present[i] {
			vs = append(vs, v)
		}
	}
	if len(vs) == 0 {
		return nil, errors.New("no values to plot")
	}

	edges, density := histogram(vs)

	// Outline of the bars, closed at zero on both ends.
	hx := []float64{edges[0]}
	hy := []float64{0}
	for i, d := range density {
		hx = append(hx, edges[i], edges[i+1])
		hy = append(hy, d, d)
	}
	hx = append(hx, edges[len(edges)-1])
	hy = append(hy, 0)

	series := []chart.Series{chart.ContinuousSeries{
		Name:    "Histogram",
		Style:   chart.Style{StrokeWidth: 1, StrokeColor: seriesColor, FillColor: fillColor},
		XValues: hx,
		YValues: hy,
	}}
	allY := append([]float64{}, hy...)

	if kx, ky := kde(vs, 200); kx != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    "KDE",
			Style:   chart.Style{StrokeWidth: 2, StrokeColor: kdeColor},
			XValues: kx,
			YValues: ky,
		})
		allY = append(allY, ky...)
	}

	xa := chart.XAxis{Name: fig.XLabel, Style: tickStyle()}
	return renderXY(fig, xa, allY, series...)
}

func renderBars(fig *Figure, xcells, ycells []dataset.Value) ([]byte, error) {
	y, err := numericAxis(ycells, "y")
	if err != nil {
		return nil, err
	}
	gs, err := groups(xcells, y.values, y.present)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(gs))
	for i, g := range gs {
		values[i] = g.mean()
	}
	return renderBarChart(fig, gs, values)
}

func renderCount(fig *Figure, xcells []dataset.Value) ([]byte, error) {
	gs, err := groups(xcells, nil, nil)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(gs))
	for i, g := range gs {
		values[i] = float64(g.n)
	}
	return renderBarChart(fig, gs, values)
}

func renderBarChart(fig *Figure, gs []*group, values []float64) ([]byte, error) {
	bars := make([]chart.Value, len(gs))
	for i, g := range gs {
		bars[i] = chart.Value{
			Label: g.label,
			Value: values[i],
			Style: chart.Style{FillColor: seriesColor, StrokeColor: seriesColor},
		}
	}

	lo, hi := minMax(values)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if lo == hi {
		hi = lo + 1
	}
	hi += (hi - lo) * 0.05

	barWidth := (DefaultWidth - 100) / (2 * len(bars))
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 2 {
		barWidth = 2
	}

	bc := chart.BarChart{
		Title:      fig.Title,
		TitleStyle: titleStyle(),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 40}},
		BarWidth:   barWidth,
		XAxis:      tickStyle(),
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Style: tickStyle(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars:     bars,
		Elements: []chart.Renderable{xLabel(fig.XLabel)},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
