package server

import (
	"bytes"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/longbridgeapp/assert"
)

type frontierResponse struct {
	Statistics struct {
		MeanX       float64  `json:"mean_x"`
		StdX        float64  `json:"std_x"`
		Correlation *float64 `json:"correlation"`
		N           int      `json:"n"`
	} `json:"statistics"`
	Portfolios []struct {
		Portfolio string   `json:"portfolio"`
		WeightX   float64  `json:"weight_x"`
		WeightY   float64  `json:"weight_y"`
		Return    float64  `json:"return"`
		Risk      *float64 `json:"risk"`
	} `json:"portfolios"`
	Precision int    `json:"precision"`
	Error     string `json:"error"`
}

func newTestMux() *http.ServeMux {
	return NewHTTPMux(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
		&FrontierAPI{Precision: 2, MaxUploadBytes: 1 << 10})
}

func post(t *testing.T, mux *http.ServeMux, target, body string) (*httptest.ResponseRecorder, frontierResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	var out frontierResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestFrontierAPI_DefaultGrid(t *testing.T) {
	rec, out := post(t, newTestMux(), "/api/frontier", "X,Y\n1,3\n2,2\n3,1\n")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, out.Statistics.N)
	assert.Equal(t, 2.0, out.Statistics.MeanX)
	assert.True(t, math.Abs(*out.Statistics.Correlation+1) < 1e-12)
	assert.Equal(t, 6, len(out.Portfolios))
	assert.Equal(t, "A", out.Portfolios[0].Portfolio)
	assert.Equal(t, 0.82, *out.Portfolios[0].Risk)
	assert.Equal(t, "F", out.Portfolios[5].Portfolio)
	assert.Equal(t, 2, out.Precision)
}

func TestFrontierAPI_CustomGridAndPrecision(t *testing.T) {
	rec, out := post(t, newTestMux(), "/api/frontier?weights=0.5,1.5&precision=3", "X,Y\n1,3\n2,2\n3,1\n")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, len(out.Portfolios))
	assert.Equal(t, 0.0, *out.Portfolios[0].Risk)
	assert.Equal(t, 1.5, out.Portfolios[1].WeightX)
	assert.Equal(t, -0.5, out.Portfolios[1].WeightY)
	// |1.5 - (-0.5)| * sqrt(2/3)
	assert.Equal(t, 1.633, *out.Portfolios[1].Risk)
	assert.Equal(t, 3, out.Precision)
}

func TestFrontierAPI_UndefinedRiskIsNull(t *testing.T) {
	rec, out := post(t, newTestMux(), "/api/frontier", "X,Y\n1,5\n1,5\n1,5\n")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Statistics.Correlation == nil)
	for _, p := range out.Portfolios {
		assert.True(t, p.Risk == nil)
	}
}

func TestFrontierAPI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{name: "missing columns", target: "/api/frontier", body: "A,B\n1,2\n", status: http.StatusUnprocessableEntity},
		{name: "empty dataset", target: "/api/frontier", body: "X,Y\n", status: http.StatusUnprocessableEntity},
		{name: "non numeric", target: "/api/frontier", body: "X,Y\n1,two\n", status: http.StatusUnprocessableEntity},
		{name: "bad weights", target: "/api/frontier?weights=a,b", body: "X,Y\n1,2\n", status: http.StatusBadRequest},
		{name: "bad precision", target: "/api/frontier?precision=-1", body: "X,Y\n1,2\n", status: http.StatusBadRequest},
		{name: "precision too large", target: "/api/frontier?precision=11", body: "X,Y\n1,2\n", status: http.StatusBadRequest},
		{name: "too large", target: "/api/frontier", body: "X,Y\n" + strings.Repeat("1,2\n", 400), status: http.StatusRequestEntityTooLarge},
		{name: "no defined risk for png", target: "/api/frontier?format=png", body: "X,Y\n1,2\n1,2\n", status: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := post(t, newTestMux(), tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, out.Error != "")
		})
	}
}

func TestFrontierAPI_MissingColumnsMessage(t *testing.T) {
	_, out := post(t, newTestMux(), "/api/frontier", "A,B\n1,2\n")
	assert.Equal(t, "CSV must contain 'X' and 'Y' columns", out.Error)
}

func TestFrontierAPI_PNG(t *testing.T) {
	rec, _ := post(t, newTestMux(), "/api/frontier?format=png", "X,Y\n1,3\n2,2\n3,4\n")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestFrontierAPI_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frontier", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
