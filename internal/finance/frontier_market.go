package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// priceSeries is the daily close history of one symbol.
type priceSeries struct {
	Symbol     string
	Timestamps []int64
	Prices     []float64
}

// fetchDaily is swapped in tests.
var fetchDaily = func(ctx context.Context, symbol, rangeParam string) ([]int64, []float64, error) {
	return fetchSeries(ctx, symbol, "1d", rangeParam)
}

// parseMarketWindow maps a window such as 30d, 6w, 3m or 2y to a Yahoo range
// parameter and the number of calendar days to keep.
func parseMarketWindow(window string) (string, int, error) {
	window = strings.ToLower(strings.TrimSpace(window))
	if window == "" {
		return "1y", 365, nil
	}

	var n int
	var unit rune
	if _, err := fmt.Sscanf(window, "%d%c", &n, &unit); err != nil || n <= 0 {
		return "", 0, fmt.Errorf("invalid window format: %s (use format like 30d, 6w, 3m, 1y)", window)
	}

	var days int
	switch unit {
	case 'd':
		days = n
	case 'w':
		days = n * 7
	case 'm':
		days = n * 30
	case 'y':
		days = n * 365
	default:
		return "", 0, fmt.Errorf("invalid window format: %s (use format like 30d, 6w, 3m, 1y)", window)
	}

	switch {
	case days <= 30:
		return "1mo", days, nil
	case days <= 90:
		return "3mo", days, nil
	case days <= 180:
		return "6mo", days, nil
	case days <= 365:
		return "1y", days, nil
	case days <= 730:
		return "2y", days, nil
	case days <= 1825:
		return "5y", days, nil
	case days <= 3650:
		return "10y", days, nil
	default:
		return "max", days, nil
	}
}

// DatasetFromQuotes builds an X/Y dataset of simple daily returns for two
// symbols over window. X holds the returns of symbolX, Y those of symbolY.
func DatasetFromQuotes(ctx context.Context, symbolX, symbolY, window string) (Dataset, error) {
	rangeParam, targetDays, err := parseMarketWindow(window)
	if err != nil {
		return nil, err
	}

	assets := make([]priceSeries, 0, 2)
	for _, symbol := range []string{symbolX, symbolY} {
		ts, prices, err := fetchDaily(ctx, symbol, rangeParam)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", symbol, err)
		}
		if len(ts) == 0 {
			return nil, fmt.Errorf("no data available for %s", symbol)
		}
		ts, prices = filterToTargetDays(ts, prices, targetDays)
		assets = append(assets, priceSeries{Symbol: symbol, Timestamps: ts, Prices: prices})
	}

	aligned, err := alignPrices(assets)
	if err != nil {
		return nil, err
	}
	return NewDataset(simpleReturns(aligned[0]), simpleReturns(aligned[1])), nil
}

// filterToTargetDays keeps the points within targetDays of the most recent one.
func filterToTargetDays(timestamps []int64, prices []float64, targetDays int) ([]int64, []float64) {
	if len(timestamps) == 0 || targetDays <= 0 {
		return timestamps, prices
	}
	cutoff := timestamps[len(timestamps)-1] - int64(targetDays*24*3600)
	start := sort.Search(len(timestamps), func(i int) bool { return timestamps[i] >= cutoff })
	return timestamps[start:], prices[start:]
}

// alignPrices puts every asset on the timeline of the sparsest one, forward
// filling gaps with the last known price.
func alignPrices(assets []priceSeries) ([][]float64, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("no assets provided")
	}
	base := assets[0]
	for _, a := range assets[1:] {
		if len(a.Timestamps) < len(base.Timestamps) {
			base = a
		}
	}
	timeline := append([]int64(nil), base.Timestamps...)
	sort.Slice(timeline, func(i, j int) bool { return timeline[i] < timeline[j] })
	if len(timeline) < 3 {
		return nil, fmt.Errorf("need at least 3 common data points, got %d", len(timeline))
	}

	out := make([][]float64, 0, len(assets))
	for _, a := range assets {
		priceAt := make(map[int64]float64, len(a.Timestamps))
		for i, ts := range a.Timestamps {
			if i < len(a.Prices) && a.Prices[i] > 0 {
				priceAt[ts] = a.Prices[i]
			}
		}
		prices := make([]float64, len(timeline))
		last := firstPriceAtOrBefore(a, timeline[0])
		for i, ts := range timeline {
			if p, ok := priceAt[ts]; ok {
				last = p
			}
			if last <= 0 {
				return nil, fmt.Errorf("no valid price data found for %s at or before timestamp %d", a.Symbol, ts)
			}
			prices[i] = last
		}
		out = append(out, prices)
	}
	return out, nil
}

// firstPriceAtOrBefore returns the latest price at or before ts, or the first
// later price when none precedes it.
func firstPriceAtOrBefore(a priceSeries, ts int64) float64 {
	best, bestTs := 0.0, int64(-1)
	for i, t := range a.Timestamps {
		if i >= len(a.Prices) || a.Prices[i] <= 0 {
			continue
		}
		if t <= ts && t > bestTs {
			best, bestTs = a.Prices[i], t
		}
	}
	if bestTs >= 0 {
		return best
	}
	for i, t := range a.Timestamps {
		if t > ts && i < len(a.Prices) && a.Prices[i] > 0 {
			return a.Prices[i]
		}
	}
	return 0
}

func simpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = prices[i]/prices[i-1] - 1
	}
	return out
}
