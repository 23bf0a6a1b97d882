package finance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ComputeStatistics returns the means, population standard deviations and the
// Pearson correlation of the X and Y columns of ds.
//
// Correlation is undefined for a single observation or a constant column; that is
// reported as an undefined Metric, not an error. An empty dataset is an error.
func ComputeStatistics(ds Dataset) (SeriesStatistics, error) {
	x, okX := ds[ColumnX]
	y, okY := ds[ColumnY]
	if !okX || !okY {
		return SeriesStatistics{}, ErrMissingColumns
	}
	if len(x) != len(y) {
		return SeriesStatistics{}, fmt.Errorf("%w: X has %d rows, Y has %d", ErrColumnLength, len(x), len(y))
	}
	if len(x) == 0 {
		return SeriesStatistics{}, ErrEmptyDataset
	}
	if err := checkFinite(ColumnX, x); err != nil {
		return SeriesStatistics{}, err
	}
	if err := checkFinite(ColumnY, y); err != nil {
		return SeriesStatistics{}, err
	}

	meanX, stdX := stat.PopMeanStdDev(x, nil)
	meanY, stdY := stat.PopMeanStdDev(y, nil)

	return SeriesStatistics{
		MeanX:       meanX,
		MeanY:       meanY,
		StdX:        stdX,
		StdY:        stdY,
		Correlation: pearson(x, y, stdX, stdY),
		N:           len(x),
	}, nil
}

// pearson is the ratio of covariance to the product of standard deviations; the
// N vs N-1 divisor cancels out so gonum's sample-based Correlation applies.
func pearson(x, y []float64, stdX, stdY float64) Metric {
	if len(x) < 2 || stdX == 0 || stdY == 0 {
		return Undefined()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Undefined()
	}
	// keep rounding noise inside [-1, 1]
	return Defined(math.Max(-1, math.Min(1, r)))
}

func checkFinite(column string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: column %s row %d: %v", ErrNonNumeric, column, i+1, v)
		}
	}
	return nil
}
