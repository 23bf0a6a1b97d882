package finance

import (
	"errors"
	"math"
	"testing"

	"github.com/longbridgeapp/assert"
)

const tol = 1e-12

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func TestComputeStatistics_PopulationStdDev(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	stats, err := ComputeStatistics(NewDataset(x, y))
	assert.Nil(t, err)
	assert.True(t, near(stats.MeanX, 5))
	// sample std would be ~2.138
	assert.True(t, near(stats.StdX, 2))
	assert.Equal(t, 8, stats.N)
}

func TestComputeStatistics_PerfectNegativeCorrelation(t *testing.T) {
	stats, err := ComputeStatistics(NewDataset([]float64{1, 2, 3}, []float64{3, 2, 1}))
	assert.Nil(t, err)
	assert.True(t, near(stats.MeanX, 2))
	assert.True(t, near(stats.MeanY, 2))
	assert.True(t, near(stats.StdX, math.Sqrt(2.0/3.0)))
	assert.True(t, near(stats.StdY, math.Sqrt(2.0/3.0)))

	corr, ok := stats.Correlation.Get()
	assert.True(t, ok)
	assert.True(t, near(corr, -1))
}

func TestComputeStatistics_MatchesDefinition(t *testing.T) {
	x := []float64{0.01, -0.02, 0.03, 0.015, -0.005}
	y := []float64{0.02, 0.01, -0.01, 0.005, 0.0}
	stats, err := ComputeStatistics(NewDataset(x, y))
	assert.Nil(t, err)

	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n
	var vx, vy, cov float64
	for i := range x {
		vx += (x[i] - mx) * (x[i] - mx)
		vy += (y[i] - my) * (y[i] - my)
		cov += (x[i] - mx) * (y[i] - my)
	}
	stdX, stdY := math.Sqrt(vx/n), math.Sqrt(vy/n)

	assert.True(t, near(stats.MeanX, mx))
	assert.True(t, near(stats.StdX, stdX))
	assert.True(t, near(stats.StdY, stdY))
	corr, ok := stats.Correlation.Get()
	assert.True(t, ok)
	assert.True(t, near(corr, cov/(n*stdX*stdY)))
}

func TestComputeStatistics_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{name: "constant columns", x: []float64{1, 1, 1}, y: []float64{5, 5, 5}},
		{name: "constant X only", x: []float64{2, 2, 2}, y: []float64{1, 2, 3}},
		{name: "single observation", x: []float64{1.5}, y: []float64{-3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := ComputeStatistics(NewDataset(tt.x, tt.y))
			assert.Nil(t, err)
			assert.False(t, stats.Correlation.IsDefined())
		})
	}
}

func TestComputeStatistics_Errors(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want error
	}{
		{name: "empty", ds: NewDataset(nil, nil), want: ErrEmptyDataset},
		{name: "missing Y", ds: Dataset{ColumnX: {1, 2}}, want: ErrMissingColumns},
		{name: "missing X", ds: Dataset{"x": {1, 2}, ColumnY: {1, 2}}, want: ErrMissingColumns},
		{name: "length mismatch", ds: NewDataset([]float64{1, 2}, []float64{1}), want: ErrColumnLength},
		{name: "NaN", ds: NewDataset([]float64{1, math.NaN()}, []float64{1, 2}), want: ErrNonNumeric},
		{name: "Inf", ds: NewDataset([]float64{1, 2}, []float64{math.Inf(1), 2}), want: ErrNonNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeStatistics(tt.ds)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}
