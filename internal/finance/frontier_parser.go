package finance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MaxWeights bounds the size of a user supplied weight grid.
const MaxWeights = 100

// ParseDatasetCSV reads a CSV with a header row and returns its X and Y columns.
// Other columns are ignored.
func ParseDatasetCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	xIdx, yIdx := -1, -1
	for i, name := range header {
		// Excel likes to prepend a BOM to the first header cell
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColumnX:
			xIdx = i
		case ColumnY:
			yIdx = i
		}
	}
	if xIdx < 0 || yIdx < 0 {
		return nil, ErrMissingColumns
	}

	var xs, ys []float64
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		x, err := parseCell(rec, xIdx, ColumnX, row)
		if err != nil {
			return nil, err
		}
		y, err := parseCell(rec, yIdx, ColumnY, row)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return NewDataset(xs, ys), nil
}

func parseCell(rec []string, idx int, column string, row int) (float64, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("%w: row %d has no %s value", ErrNonNumeric, row, column)
	}
	raw := strings.TrimSpace(rec[idx])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: row %d column %s: %q", ErrNonNumeric, row, column, raw)
	}
	return v, nil
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseWeights parses a weight grid such as "0 0.25 0.5" or "0,0.5,1".
// An empty input yields DefaultWeights. Weights outside [0, 1] are accepted.
func ParseWeights(input string) ([]float64, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		out := make([]float64, len(DefaultWeights))
		copy(out, DefaultWeights)
		return out, nil
	}
	if len(fields) > MaxWeights {
		return nil, fmt.Errorf("too many weights: %d (max %d)", len(fields), MaxWeights)
	}

	weights := make([]float64, 0, len(fields))
	for _, f := range fields {
		w, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight '%s': %w", f, err)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("invalid weight '%s': not a finite number", f)
		}
		weights = append(weights, w)
	}
	return weights, nil
}
