package finance

import (
	"math"

	"github.com/shopspring/decimal"
)

// varianceTolerance absorbs rounding noise around a zero portfolio variance.
const varianceTolerance = 1e-12

// ComputeFrontier sweeps the two-asset allocation over weights, the fraction held
// in X, and returns one point per weight in the same order. Weights outside [0, 1]
// are accepted and extrapolate the allocation.
func ComputeFrontier(stats SeriesStatistics, weights []float64) []PortfolioPoint {
	points := make([]PortfolioPoint, len(weights))
	for i, wx := range weights {
		wy := 1 - wx
		points[i] = PortfolioPoint{
			Label:          Label(i),
			WeightX:        wx,
			WeightY:        wy,
			ExpectedReturn: wx*stats.MeanX + wy*stats.MeanY,
			Risk:           portfolioRisk(stats, wx, wy),
		}
	}
	return points
}

// portfolioRisk is the standard deviation of the two-asset portfolio.
func portfolioRisk(stats SeriesStatistics, wx, wy float64) Metric {
	corr, ok := stats.Correlation.Get()
	if !ok {
		return Undefined()
	}
	variance := wx*wx*stats.StdX*stats.StdX +
		wy*wy*stats.StdY*stats.StdY +
		2*wx*wy*corr*stats.StdX*stats.StdY
	if variance < 0 {
		if variance < -varianceTolerance {
			return Undefined()
		}
		variance = 0
	}
	return Defined(math.Sqrt(variance))
}

// Label names the portfolio at index i: A..Z, then AA, AB, ... like spreadsheet columns.
func Label(i int) string {
	if i < 0 {
		return ""
	}
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

// RoundPoints returns a copy of points with every number rounded half away from
// zero to precision decimals. The input is left untouched.
func RoundPoints(points []PortfolioPoint, precision int) []PortfolioPoint {
	if precision < 0 {
		precision = 0
	}
	out := make([]PortfolioPoint, len(points))
	for i, p := range points {
		out[i] = PortfolioPoint{
			Label:          p.Label,
			WeightX:        round(p.WeightX, precision),
			WeightY:        round(p.WeightY, precision),
			ExpectedReturn: round(p.ExpectedReturn, precision),
			Risk:           p.Risk,
		}
		if r, ok := p.Risk.Get(); ok {
			out[i].Risk = Defined(round(r, precision))
		}
	}
	return out
}

func round(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(int32(precision)).Float64()
	return f
}

// BuildFrontierReport computes the statistics of ds, sweeps weights (DefaultWeights
// when empty) and rounds the points to precision decimals.
func BuildFrontierReport(ds Dataset, weights []float64, precision int) (*FrontierReport, error) {
	stats, err := ComputeStatistics(ds)
	if err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		weights = DefaultWeights
	}
	if precision < 0 {
		precision = 0
	}
	return &FrontierReport{
		Statistics: stats,
		Points:     RoundPoints(ComputeFrontier(stats, weights), precision),
		Precision:  precision,
	}, nil
}
