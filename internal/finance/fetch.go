package finance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	yahooHosts    = []string{"query1.finance.yahoo.com", "query2.finance.yahoo.com"}
	yahooBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
)

// yahooGet performs one GET against Yahoo and returns the body when it looks like JSON.
func yahooGet(ctx context.Context, url, symbol string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(symbol)))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read yahoo response: %w", err)
	}
	preview := string(body)
	if len(preview) > 120 {
		preview = preview[:120]
	}
	if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(preview, "Edge: Too Many Requests") {
		return nil, fmt.Errorf("yahoo %s returned 429: Edge: Too Many Requests", req.URL.Host)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo %s returned %d: %s", req.URL.Host, resp.StatusCode, preview)
	}
	if strings.HasPrefix(preview, "<") || strings.HasPrefix(preview, "Edge:") {
		return nil, fmt.Errorf("yahoo returned non-json body: %s", preview)
	}
	return body, nil
}

// withRetries calls try against every host, backing off between rounds,
// until it succeeds or the context is done.
func withRetries(ctx context.Context, try func(host string) error) error {
	var lastErr error
	for attempt := 0; attempt < len(yahooBackoffs)+1; attempt++ {
		for _, host := range yahooHosts {
			if lastErr = try(host); lastErr == nil {
				return nil
			}
		}
		if attempt < len(yahooBackoffs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(yahooBackoffs[attempt]):
			}
		}
	}
	return lastErr
}

// fetchSeries fetches timestamps and close prices for a single symbol using the
// given interval and range, falling back to the v7 spark endpoint.
func fetchSeries(ctx context.Context, symbol, interval, rangeParam string) ([]int64, []float64, error) {
	var yc chartResponse
	err := withRetries(ctx, func(host string) error {
		url := fmt.Sprintf("https://%s/v8/finance/chart/%s?range=%s&interval=%s&events=div,splits", host, symbol, rangeParam, interval)
		body, err := yahooGet(ctx, url, symbol)
		if err != nil {
			return err
		}
		parsed, err := decodeChart(body)
		if err != nil {
			return err
		}
		yc = parsed
		return nil
	})
	if err == nil {
		if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
			return nil, nil, errors.New("no data")
		}
		ts, cl := dropMissingCloses(yc.Chart.Result[0].Timestamp, yc.Chart.Result[0].Indicators.Quote[0].Close)
		return ts, cl, nil
	}

	var ts []int64
	var cl []float64
	sparkErr := withRetries(ctx, func(host string) error {
		url := fmt.Sprintf("https://%s/v7/finance/spark?symbols=%s&range=%s&interval=%s", host, strings.ToUpper(symbol), rangeParam, interval)
		body, err := yahooGet(ctx, url, symbol)
		if err != nil {
			return err
		}
		var sp sparkResponse
		if err := json.Unmarshal(body, &sp); err != nil {
			return fmt.Errorf("failed to parse yahoo spark json: %w", err)
		}
		if len(sp.Spark.Result) == 0 || len(sp.Spark.Result[0].Response) == 0 {
			return errors.New("no data")
		}
		ts, cl = dropMissingCloses(sp.Spark.Result[0].Response[0].Timestamp, sp.Spark.Result[0].Response[0].Close)
		return nil
	})
	if sparkErr != nil {
		return nil, nil, fmt.Errorf("%w (spark fallback: %v)", err, sparkErr)
	}
	return ts, cl, nil
}

// decodeChart parses a v8 chart payload into a fresh response.
func decodeChart(body []byte) (chartResponse, error) {
	var yc chartResponse
	if err := json.Unmarshal(body, &yc); err != nil {
		return chartResponse{}, fmt.Errorf("failed to parse yahoo json: %w", err)
	}
	return yc, nil
}

// chartResponse holds the fields read from a v8 chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// sparkResponse holds the fields read from a v7 spark payload.
type sparkResponse struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Timestamp []int64   `json:"timestamp"`
				Close     []float64 `json:"close"`
			} `json:"response"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"spark"`
}

// dropMissingCloses keeps the points with a positive close. Yahoo nulls decode as 0.
func dropMissingCloses(ts []int64, closes []float64) ([]int64, []float64) {
	n := min(len(ts), len(closes))
	keptTs := make([]int64, 0, n)
	kept := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if closes[i] > 0 {
			keptTs = append(keptTs, ts[i])
			kept = append(kept, closes[i])
		}
	}
	return keptTs, kept
}
