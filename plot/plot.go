// Package plot turns a table and a pair of column selections into a rendered
// chart.
//
// Every failure, whatever its cause, is reported as ErrPlot. Callers show one
// generic message and may log the wrapped cause.
package plot

import (
	"errors"
	"fmt"

	"github.com/stenstromen/healthviz/dataset"
	"github.com/stenstromen/healthviz/model"
)

var ErrPlot = errors.New("plot not possible")

// Message is what users see for any ErrPlot.
const Message = "Sorry, the selected visualization is not possible. Please try different options."

const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// Figure is a rendered chart together with the labels it was drawn with.
type Figure struct {
	Kind   model.PlotKind
	Title  string
	XLabel string
	YLabel string
	PNG    []byte
}

// Generate renders a plot of kind for column y against column x.
func Generate(t *dataset.Table, x, y string, kind model.PlotKind) (*Figure, error) {
	return GenerateRequest(t, model.PlotRequest{XColumn: x, YColumn: y, Kind: kind})
}

func GenerateRequest(t *dataset.Table, req model.PlotRequest) (fig *Figure, err error) {
	defer func() {
		if r := recover(); r != nil {
			fig, err = nil, fmt.Errorf("%w: renderer panic: %v", ErrPlot, r)
		}
	}()

	fig, err = generate(t, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlot, err)
	}
	return fig, nil
}

func generate(t *dataset.Table, req model.PlotRequest) (*Figure, error) {
	if t == nil {
		return nil, errors.New("no table loaded")
	}
	if !req.HasX() {
		return nil, errors.New("x axis is required")
	}
	xs, err := t.Column(req.XColumn)
	if err != nil {
		return nil, err
	}

	fig := &Figure{Kind: req.Kind, XLabel: req.XColumn, YLabel: req.YColumn}

	switch req.Kind {
	case model.DistributionPlot:
		fig.YLabel = "Density"
	case model.CountPlot:
		fig.YLabel = "Count"
	case model.LinePlot, model.BarChart, model.ScatterPlot:
		if !req.HasY() {
			return nil, fmt.Errorf("%s needs a y axis", req.Kind)
		}
	default:
		return nil, fmt.Errorf("unsupported plot kind %d", int(req.Kind))
	}
	fig.Title = fmt.Sprintf("%s of %s vs %s", req.Kind, fig.YLabel, fig.XLabel)

	var ys []dataset.Value
	if req.Kind != model.DistributionPlot && req.Kind != model.CountPlot {
		if ys, err = t.Column(req.YColumn); err != nil {
			return nil, err
		}
	}

	var png []byte
	switch req.Kind {
	case model.LinePlot:
		png, err = renderLine(fig, xs, ys)
	case model.ScatterPlot:
		png, err = renderScatter(fig, xs, ys)
	case model.BarChart:
		png, err = renderBars(fig, xs, ys)
	case model.DistributionPlot:
		png, err = renderDistribution(fig, xs)
	case model.CountPlot:
		png, err = renderCount(fig, xs)
	}
	if err != nil {
		return nil, err
	}
	fig.PNG = png
	return fig, nil
}
