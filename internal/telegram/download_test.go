package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/longbridgeapp/assert"
)

const testToken = "123456:SECRET-TOKEN"

func fileServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadCSV(t *testing.T) {
	srv := fileServer(t, "X,Y\n1,3\n2,2\n3,1\n", http.StatusOK)
	ds, err := downloadCSV(context.Background(), srv.Client(), srv.URL+"/file/bot"+testToken+"/documents/file_1.csv", 1<<10)
	assert.Nil(t, err)
	assert.Equal(t, []float64{1, 2, 3}, ds["X"])
	assert.Equal(t, []float64{3, 2, 1}, ds["Y"])
}

func TestDownloadCSV_OversizedBodyFails(t *testing.T) {
	body := "X,Y\n1,2\n3,45\n"
	srv := fileServer(t, body, http.StatusOK)

	_, err := downloadCSV(context.Background(), srv.Client(), srv.URL+"/doc.csv", int64(len(body)-2))
	assert.True(t, errors.Is(err, errFileTooLarge))

	ds, err := downloadCSV(context.Background(), srv.Client(), srv.URL+"/doc.csv", int64(len(body)))
	assert.Nil(t, err)
	assert.Equal(t, []float64{2, 45}, ds["Y"])
}

func TestDownloadCSV_ErrorsHideFileURL(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "unreachable host", url: downURL + "/file/bot" + testToken + "/documents/file_1.csv"},
		{name: "bad status", url: fileServer(t, "gone", http.StatusNotFound).URL + "/file/bot" + testToken + "/x.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := downloadCSV(context.Background(), http.DefaultClient, tt.url, 1<<10)
			assert.True(t, errors.Is(err, errDownload))
			assert.False(t, strings.Contains(err.Error(), testToken))
			assert.False(t, strings.Contains(errorText(err), testToken))
			assert.Equal(t, "Could not download the file from Telegram, please send it again.", errorText(err))
		})
	}
}

func TestReadLimited(t *testing.T) {
	data, err := readLimited(strings.NewReader("abcd"), 4)
	assert.Nil(t, err)
	assert.Equal(t, "abcd", string(data))

	_, err = readLimited(strings.NewReader("abcde"), 4)
	assert.True(t, errors.Is(err, errFileTooLarge))
	assert.Equal(t, "Frontier failed: file is too large (max 4 bytes)", errorText(err))

	data, err = readLimited(strings.NewReader("abcde"), 0)
	assert.Nil(t, err)
	assert.Equal(t, "abcde", string(data))
}
