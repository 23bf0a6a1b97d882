package finance

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vicanso/go-charts/v2"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// MakeFrontierChart renders the risk/return frontier as a PNG: x = risk,
// y = expected return, points joined in grid order and annotated with their label.
// Points with an undefined risk are left out.
func MakeFrontierChart(points []PortfolioPoint, title string) ([]byte, error) {
	var xs, ys []float64
	var notes []chart.Value2
	for _, p := range points {
		r, ok := p.Risk.Get()
		if !ok {
			continue
		}
		xs = append(xs, r)
		ys = append(ys, p.ExpectedReturn)
		notes = append(notes, chart.Value2{XValue: r, YValue: p.ExpectedReturn, Label: p.Label})
	}
	if len(xs) == 0 {
		return nil, ErrNoDefinedRisk
	}
	if title == "" {
		title = "Efficient Frontier"
	}

	xMin, xMax := paddedRange(xs)
	yMin, yMax := paddedRange(ys)

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Risk (Std Dev)",
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: twoDecimals,
		},
		YAxis: chart.YAxis{
			Name:           "Return",
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: twoDecimals,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Portfolios",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlue,
					StrokeWidth: 2,
					DotColor:    drawing.ColorBlue,
					DotWidth:    5,
				},
			},
			chart.AnnotationSeries{Annotations: notes},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}
	return buf.Bytes(), nil
}

func twoDecimals(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

// paddedRange returns min/max of values widened by 5% so end points are not
// drawn on the border. A flat series gets a small fixed margin.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Abs(hi) * 0.05
	}
	if pad == 0 {
		pad = 0.01
	}
	return lo - pad, hi + pad
}

// MakeAllocationChart renders expected return and risk per portfolio as grouped
// bars. Undefined risks are drawn as zero and called out in the subtitle.
func MakeAllocationChart(points []PortfolioPoint, title string) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no portfolios to plot")
	}
	if title == "" {
		title = "Return and risk by allocation"
	}

	labels := make([]string, len(points))
	returns := make([]float64, len(points))
	risks := make([]float64, len(points))
	undefined := 0
	for i, p := range points {
		labels[i] = fmt.Sprintf("%s (%.0f/%.0f)", p.Label, p.WeightX*100, p.WeightY*100)
		returns[i] = p.ExpectedReturn
		if r, ok := p.Risk.Get(); ok {
			risks[i] = r
		} else {
			undefined++
		}
	}

	subtitle := "weights X/Y in %"
	if undefined > 0 {
		subtitle += fmt.Sprintf(" • risk N/A for %d portfolio(s)", undefined)
	}

	p, err := charts.BarRender(
		[][]float64{returns, risks},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"Return", "Risk (Std Dev)"},
			Left: charts.PositionRight,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
