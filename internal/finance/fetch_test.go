package finance

import (
	"testing"

	"github.com/longbridgeapp/assert"
)

func TestDecodeChart(t *testing.T) {
	good := `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"close":[10.5,11]}]}}],"error":null}}`
	yc, err := decodeChart([]byte(good))
	assert.Nil(t, err)
	assert.Equal(t, []int64{1, 2}, yc.Chart.Result[0].Timestamp)
	assert.Equal(t, []float64{10.5, 11}, yc.Chart.Result[0].Indicators.Quote[0].Close)

	// truncated after the result array started
	yc, err = decodeChart([]byte(`{"chart":{"result":[{"timestamp":[1,2],"indicators":`))
	assert.True(t, err != nil)
	assert.Equal(t, 0, len(yc.Chart.Result))

	yc, err = decodeChart([]byte(`{"chart":{"result":[],"error":null}}`))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(yc.Chart.Result))
}
