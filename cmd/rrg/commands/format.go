package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/glamour"

	"github.com/wonny/rrg/internal/s2_view"
)

// Output formats of analyze
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// writeTable prints the summary in fixed-width columns
func writeTable(w io.Writer, chart *s2_view.Chart) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  RRG vs %s\n", chart.Benchmark)
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  Run ID    : %s\n", chart.RunID)
	fmt.Fprintf(w, "  Period    : %s ~ %s (lookback %dd)\n",
		chart.Window.Start.Format("2006-01-02"),
		chart.Window.End.Format("2006-01-02"),
		chart.Window.LookbackDays)
	fmt.Fprintf(w, "  Tail      : %d\n", chart.TailLength)
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")

	fmt.Fprintf(w, "  %-16s %10s %12s   %s\n", "Ticker", "RS-Ratio", "RS-Momentum", "Quadrant")
	for _, row := range chart.Summary {
		fmt.Fprintf(w, "  %-16s %10.2f %12.2f   %s\n", row.Symbol, row.RSRatio, row.RSMomentum, row.Quadrant)
	}

	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	for _, entry := range chart.Legend {
		fmt.Fprintf(w, "  %-10s %3d  %s\n", entry.Quadrant, entry.Count, entry.Description)
	}

	if len(chart.Excluded) > 0 {
		symbols := make([]string, 0, len(chart.Excluded))
		for symbol := range chart.Excluded {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
		fmt.Fprintln(w, "  Excluded:")
		for _, symbol := range symbols {
			fmt.Fprintf(w, "    - %s (%s)\n", symbol, exclusionLabel(chart.Excluded[symbol]))
		}
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// writeMarkdown prints the markdown report, rendered for the terminal unless raw
func writeMarkdown(w io.Writer, chart *s2_view.Chart, raw bool) error {
	md := s2_view.Markdown(chart)
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}
