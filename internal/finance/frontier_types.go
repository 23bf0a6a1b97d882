package finance

import (
	"fmt"
	"strconv"
)

// ColumnX and ColumnY are the column names the frontier reads from a dataset.
const (
	ColumnX = "X"
	ColumnY = "Y"
)

// DefaultPrecision is the number of decimals used when presenting results.
const DefaultPrecision = 2

// MaxPrecision is the largest number of decimals accepted from users.
const MaxPrecision = 10

// ClampPrecision limits p to [0, MaxPrecision].
func ClampPrecision(p int) int {
	return min(max(p, 0), MaxPrecision)
}

// DefaultWeights is the allocation grid to asset X used when none is given.
var DefaultWeights = []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}

// Dataset holds named numeric columns of paired observations.
type Dataset map[string][]float64

// NewDataset builds a Dataset with X and Y columns.
func NewDataset(x, y []float64) Dataset {
	return Dataset{ColumnX: x, ColumnY: y}
}

// Len returns the number of rows in the X column.
func (d Dataset) Len() int {
	return len(d[ColumnX])
}

// Metric is a float that may be undefined, e.g. a correlation of a constant series.
// Consumers must branch on Get before using the value.
type Metric struct {
	value   float64
	defined bool
}

// Defined wraps v as a defined metric.
func Defined(v float64) Metric { return Metric{value: v, defined: true} }

// Undefined returns the undefined metric.
func Undefined() Metric { return Metric{} }

// Get returns the value and whether it is defined.
func (m Metric) Get() (float64, bool) { return m.value, m.defined }

// IsDefined reports whether the metric holds a value.
func (m Metric) IsDefined() bool { return m.defined }

// Format renders the value with the given number of decimals, or "N/A".
func (m Metric) Format(precision int) string {
	if !m.defined {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", precision, m.value)
}

func (m Metric) String() string { return m.Format(DefaultPrecision) }

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.value, 'f', -1, 64), nil
}

// SeriesStatistics summarizes the X and Y columns of a dataset.
type SeriesStatistics struct {
	MeanX       float64 `json:"mean_x"`
	MeanY       float64 `json:"mean_y"`
	StdX        float64 `json:"std_x"` // population standard deviation
	StdY        float64 `json:"std_y"`
	Correlation Metric  `json:"correlation"`
	N           int     `json:"n"`
}

// PortfolioPoint is one allocation of the frontier sweep.
type PortfolioPoint struct {
	Label          string  `json:"portfolio"`
	WeightX        float64 `json:"weight_x"`
	WeightY        float64 `json:"weight_y"`
	ExpectedReturn float64 `json:"return"`
	Risk           Metric  `json:"risk"`
}

// FrontierReport is the presentation-ready result of a frontier computation.
type FrontierReport struct {
	Statistics SeriesStatistics `json:"statistics"`
	Points     []PortfolioPoint `json:"portfolios"`
	Precision  int              `json:"precision"`
}
