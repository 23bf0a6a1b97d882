package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"frontierBot/internal/finance"
	"frontierBot/internal/telemetry"
)

// FrontierAPI serves POST /api/frontier: the CSV dataset is the request body,
// the weight grid and precision come from the query string.
type FrontierAPI struct {
	Precision      int
	MaxUploadBytes int64
}

type errorBody struct {
	Error string `json:"error"`
}

func (a *FrontierAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, span := telemetry.Tracer().Start(r.Context(), "http.frontier")
	defer span.End()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{"method not allowed"})
		return
	}

	q := r.URL.Query()
	weights, err := finance.ParseWeights(q.Get("weights"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{err.Error()})
		return
	}
	precision := a.Precision
	if v := q.Get("precision"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > finance.MaxPrecision {
			writeJSON(w, http.StatusBadRequest, errorBody{fmt.Sprintf("precision must be an integer between 0 and %d", finance.MaxPrecision)})
			return
		}
		precision = p
	}

	body := r.Body
	if a.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	}
	ds, err := finance.ParseDatasetCSV(body)
	if err == nil {
		span.SetAttributes(attribute.Int("frontier.rows", ds.Len()), attribute.Int("frontier.weights", len(weights)))
	}
	var report *finance.FrontierReport
	if err == nil {
		report, err = finance.BuildFrontierReport(ds, weights, precision)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeJSON(w, statusFor(err), errorBody{err.Error()})
		return
	}

	if q.Get("format") == "png" {
		img, err := finance.MakeFrontierChart(report.Points, "Efficient Frontier")
		if err != nil {
			writeJSON(w, statusFor(err), errorBody{err.Error()})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, finance.ErrMissingColumns),
		errors.Is(err, finance.ErrEmptyDataset),
		errors.Is(err, finance.ErrNonNumeric),
		errors.Is(err, finance.ErrColumnLength),
		errors.Is(err, finance.ErrNoDefinedRisk):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Printf("http: encode response: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}
