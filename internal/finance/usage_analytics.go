package finance

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"frontierBot/internal/storage"

	"github.com/vicanso/go-charts/v2"
)

// UsageAnalytics renders bot usage recorded in storage.
type UsageAnalytics struct{}

func NewUsageAnalytics() *UsageAnalytics {
	return &UsageAnalytics{}
}

// displayLocation is the zone usage timestamps are shown in: USAGE_TIMEZONE,
// else America/New_York, else fixed EST when tzdata is missing.
func displayLocation() *time.Location {
	name := os.Getenv("USAGE_TIMEZONE")
	if name == "" {
		name = "America/New_York"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MakeUsageChart creates a pie chart of command categories.
func (ua *UsageAnalytics) MakeUsageChart(stats map[string]*storage.UsageStats, days int) ([]byte, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("no usage data available")
	}

	categories := sortedKeys(stats)
	values := make([]float64, 0, len(categories))
	total := 0
	for _, c := range categories {
		values = append(values, float64(stats[c].Count))
		total += stats[c].Count
	}

	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = fmt.Sprintf("%s (%.1f%%)", c, values[i]/float64(total)*100)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Command Usage Distribution (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// MakeUsageTimeSeriesChart creates a line chart of command counts per category over time.
func (ua *UsageAnalytics) MakeUsageTimeSeriesChart(series map[string][]storage.TimeSeriesPoint, days int) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no time series data available")
	}

	seen := map[int64]bool{}
	var stamps []int64
	for _, points := range series {
		for _, p := range points {
			if !seen[p.Timestamp] {
				seen[p.Timestamp] = true
				stamps = append(stamps, p.Timestamp)
			}
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	xAxis := make([]string, len(stamps))
	for i, ts := range stamps {
		t := time.Unix(ts, 0).In(displayLocation())
		switch {
		case days <= 1:
			xAxis[i] = t.Format("15:04")
		case days <= 7:
			xAxis[i] = t.Format("Mon 15:04")
		default:
			xAxis[i] = t.Format("01/02")
		}
	}

	names := sortedKeys(series)
	values := make([][]float64, 0, len(names))
	for _, name := range names {
		counts := map[int64]int{}
		for _, p := range series[name] {
			counts[p.Timestamp] = p.Count
		}
		row := make([]float64, len(stamps))
		for i, ts := range stamps {
			row[i] = float64(counts[ts])
		}
		values = append(values, row)
	}

	p, err := charts.LineRender(
		values,
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xAxis}),
		charts.TitleTextOptionFunc(fmt.Sprintf("Command Usage Over Time (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// FormatUsageStatsText creates a text summary of usage statistics, top 5 commands per category.
func (ua *UsageAnalytics) FormatUsageStatsText(stats map[string]*storage.UsageStats, days int) string {
	if len(stats) == 0 {
		return "No usage data available for the specified period."
	}

	total := 0
	for _, st := range stats {
		total += st.Count
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Usage Analytics* (%d days)\n\n", days)
	fmt.Fprintf(&b, "*Total Commands*: %d\n\n", total)

	for _, category := range sortedKeys(stats) {
		st := stats[category]
		fmt.Fprintf(&b, "*%s* (%d commands, %.1f%%)\n",
			formatCategoryName(category), st.Count, float64(st.Count)/float64(total)*100)

		commands := sortedKeys(st.Commands)
		sort.SliceStable(commands, func(i, j int) bool {
			return st.Commands[commands[i]] > st.Commands[commands[j]]
		})
		for i, cmd := range commands {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  • %s: %d\n", cmd, st.Commands[cmd])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Usage categories recorded by the bot.
const (
	CategoryFrontier = "frontier"
	CategoryMarket   = "market"
	CategoryAI       = "ai"
	CategoryMeta     = "meta"
)

func formatCategoryName(category string) string {
	switch category {
	case CategoryFrontier:
		return "📈 Frontier from CSV"
	case CategoryMarket:
		return "💹 Frontier from market data"
	case CategoryAI:
		return "🤖 AI Commentary"
	case CategoryMeta:
		return "ℹ️ Help & Usage"
	default:
		return category
	}
}
