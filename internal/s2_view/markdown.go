package s2_view

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders the summary table and quadrant legend
func Markdown(chart *Chart) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Relative Rotation Graph vs %s\n\n", chart.Benchmark)
	fmt.Fprintf(&b, "Window %s → %s, lookback %d days, tail %d\n\n",
		chart.Window.Start.Format("2006-01-02"),
		chart.Window.End.Format("2006-01-02"),
		chart.Window.LookbackDays,
		chart.TailLength,
	)

	b.WriteString("| Ticker | RS-Ratio | RS-Momentum | Quadrant |\n")
	b.WriteString("|---|---:|---:|---|\n")
	for _, row := range chart.Summary {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %s |\n", row.Symbol, row.RSRatio, row.RSMomentum, row.Quadrant)
	}

	b.WriteString("\n## Quadrants\n\n")
	b.WriteString("| Quadrant | Count | Meaning |\n")
	b.WriteString("|---|---:|---|\n")
	for _, entry := range chart.Legend {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", entry.Quadrant, entry.Count, entry.Description)
	}

	if len(chart.Excluded) > 0 {
		symbols := make([]string, 0, len(chart.Excluded))
		for symbol := range chart.Excluded {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		b.WriteString("\n## Excluded\n\n")
		for _, symbol := range symbols {
			fmt.Fprintf(&b, "- %s: %s\n", symbol, chart.Excluded[symbol].Reason)
		}
	}

	return b.String()
}
