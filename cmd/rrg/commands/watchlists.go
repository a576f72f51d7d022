package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// watchlistsCmd represents the watchlists command
var watchlistsCmd = &cobra.Command{
	Use:   "watchlists",
	Short: "등록된 watchlist 목록",
	RunE:  listWatchlists,
}

var watchlistsJSON bool

func init() {
	rootCmd.AddCommand(watchlistsCmd)

	watchlistsCmd.Flags().BoolVar(&watchlistsJSON, "json", false, "JSON 출력")
}

func listWatchlists(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.watchlists == nil {
		return fmt.Errorf("no watchlist file at %s", a.cfg.RRG.WatchlistFile)
	}

	all := a.watchlists.All()
	if watchlistsJSON {
		return writeJSON(os.Stdout, all)
	}

	for _, w := range all {
		source := w.Source
		if source == "" {
			source = a.cfg.RRG.Source
		}
		fmt.Printf("📊 %s\n", w.Name)
		if w.Description != "" {
			fmt.Printf("   %s\n", w.Description)
		}
		fmt.Printf("   Benchmark: %s (%s)\n", w.Benchmark, source)
		fmt.Printf("   Symbols (%d): %s\n", len(w.Symbols), strings.Join(w.Symbols, ", "))
		fmt.Println()
	}
	return nil
}
