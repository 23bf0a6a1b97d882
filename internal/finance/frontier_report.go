package finance

import (
	"fmt"
	"strings"
)

// FormatStatisticsText renders the summary lines shown above the frontier table.
func FormatStatisticsText(stats SeriesStatistics, precision int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mean of X: %.*f\n", precision, stats.MeanX)
	fmt.Fprintf(&b, "Mean of Y: %.*f\n", precision, stats.MeanY)
	fmt.Fprintf(&b, "Population Std Dev of X: %.*f\n", precision, stats.StdX)
	fmt.Fprintf(&b, "Population Std Dev of Y: %.*f\n", precision, stats.StdY)
	fmt.Fprintf(&b, "Pearson Correlation Coefficient: %s\n", stats.Correlation.Format(precision))
	return b.String()
}

var frontierColumns = []string{"Portfolio", "Weight_X", "Weight_Y", "Return", "Risk (Std Dev)"}

func frontierRows(points []PortfolioPoint, precision int) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Label,
			fmt.Sprintf("%.*f", precision, p.WeightX),
			fmt.Sprintf("%.*f", precision, p.WeightY),
			fmt.Sprintf("%.*f", precision, p.ExpectedReturn),
			p.Risk.Format(precision),
		})
	}
	return rows
}

// FormatFrontierTable renders points as a fixed-width text table, numbers right aligned.
func FormatFrontierTable(points []PortfolioPoint, precision int) string {
	rows := frontierRows(points, precision)
	widths := make([]int, len(frontierColumns))
	for i, c := range frontierColumns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == 0 {
				fmt.Fprintf(&b, "%-*s", widths[i], cell)
			} else {
				fmt.Fprintf(&b, "%*s", widths[i], cell)
			}
		}
		b.WriteString("\n")
	}
	writeRow(frontierColumns)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// FormatFrontierMarkdown renders the whole report as a markdown document.
func FormatFrontierMarkdown(report *FrontierReport) string {
	var b strings.Builder
	b.WriteString("# Portfolio Efficient Frontier\n\n")
	b.WriteString("## Basic Statistics\n\n")
	for _, line := range strings.Split(strings.TrimSpace(FormatStatisticsText(report.Statistics, report.Precision)), "\n") {
		b.WriteString("- " + line + "\n")
	}
	b.WriteString("\n## Efficient Frontier Results\n\n")
	b.WriteString("| " + strings.Join(frontierColumns, " | ") + " |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, row := range frontierRows(report.Points, report.Precision) {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}
