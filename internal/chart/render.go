// Package chart renders the aggregated monthly series as a PNG line
// chart, the image counterpart of the dashboard's evolution graph.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"cartorios/internal/core"
)

// ErrEmptySeries is returned when there is nothing to plot. A line
// needs two points, so a single-month series is not plottable either.
var ErrEmptySeries = errors.New("series needs at least two months to plot")

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  int
	Height int
}

// Render draws the series as a monthly line chart and returns the PNG
// bytes.
func Render(points []core.Point, opts Options) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrEmptySeries
	}
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	if opts.Title == "" {
		opts.Title = "Evolução da Arrecadação Mensal"
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Month
		ys[i] = p.Total.Reais()
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01/2006"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return core.FormatBRL(int64(vf * 100))
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Arrecadação",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2.5,
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
