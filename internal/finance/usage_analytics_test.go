package finance

import (
	"bytes"
	"strings"
	"testing"

	"github.com/longbridgeapp/assert"

	"frontierBot/internal/storage"
)

func TestFormatUsageStatsText(t *testing.T) {
	ua := NewUsageAnalytics()
	assert.Equal(t, "No usage data available for the specified period.", ua.FormatUsageStatsText(nil, 7))

	stats := map[string]*storage.UsageStats{
		CategoryFrontier: {Count: 3, Commands: map[string]int{"/frontier": 3}},
		CategoryMeta:     {Count: 1, Commands: map[string]int{"/help": 1}},
	}
	text := ua.FormatUsageStatsText(stats, 7)
	assert.True(t, strings.Contains(text, "*Total Commands*: 4"))
	assert.True(t, strings.Contains(text, "*📈 Frontier from CSV* (3 commands, 75.0%)"))
	assert.True(t, strings.Contains(text, "  • /help: 1"))
}

func TestMakeUsageCharts(t *testing.T) {
	ua := NewUsageAnalytics()
	stats := map[string]*storage.UsageStats{
		CategoryFrontier: {Count: 3, Commands: map[string]int{"/frontier": 3}},
		CategoryMarket:   {Count: 2, Commands: map[string]int{"/pair": 2}},
	}
	img, err := ua.MakeUsageChart(stats, 7)
	assert.Nil(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	series := map[string][]storage.TimeSeriesPoint{
		CategoryFrontier: {{Timestamp: 3600, Count: 2}, {Timestamp: 7200, Count: 1}},
		CategoryMarket:   {{Timestamp: 7200, Count: 2}},
	}
	img, err = ua.MakeUsageTimeSeriesChart(series, 1)
	assert.Nil(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = ua.MakeUsageChart(nil, 7)
	assert.True(t, err != nil)
}
