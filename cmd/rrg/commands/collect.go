package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rrg/internal/contracts"
	"github.com/wonny/rrg/internal/s0_data/collector"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "가격 수집 (Postgres 저장)",
	Long: `라이브 소스(yahoo|naver)에서 종가를 받아 Postgres에 저장합니다.
저장된 종가는 --source postgres 로 오프라인 분석에 사용할 수 있습니다.

DATABASE_URL 설정이 필요합니다.

Example:
  go run ./cmd/rrg collect --watchlist nifty50
  go run ./cmd/rrg collect --benchmark ^NSEI --symbols INFY.NS,TCS.NS --lookback 300`,
	RunE: runCollect,
}

var (
	collectWatchlist string
	collectBenchmark string
	collectSymbols   []string
	collectSource    string
	collectLookback  int
	collectWorkers   int
)

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVarP(&collectWatchlist, "watchlist", "w", "", "watchlist 이름")
	collectCmd.Flags().StringVarP(&collectBenchmark, "benchmark", "b", "", "벤치마크 심볼")
	collectCmd.Flags().StringSliceVarP(&collectSymbols, "symbols", "s", nil, "종목 심볼 목록 (쉼표 구분)")
	collectCmd.Flags().StringVar(&collectSource, "source", "", "라이브 소스 (yahoo|naver)")
	collectCmd.Flags().IntVar(&collectLookback, "lookback", 0, "조회 기간 (일)")
	collectCmd.Flags().IntVar(&collectWorkers, "workers", 4, "동시 수집 워커 수")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.prices == nil {
		return fmt.Errorf("collect requires DATABASE_URL")
	}

	benchmark, symbols, source := collectBenchmark, collectSymbols, collectSource
	if collectWatchlist != "" {
		if a.watchlists == nil {
			return fmt.Errorf("no watchlist file at %s", a.cfg.RRG.WatchlistFile)
		}
		w, err := a.watchlists.Get(collectWatchlist)
		if err != nil {
			return err
		}
		if benchmark == "" {
			benchmark = w.Benchmark
		}
		if len(symbols) == 0 {
			symbols = w.Symbols
		}
		if source == "" {
			source = w.Source
		}
	}
	if source == "" {
		source = a.cfg.RRG.Source
	}
	if benchmark == "" {
		benchmark = a.cfg.RRG.Benchmark
	}
	if len(symbols) == 0 {
		return fmt.Errorf("either --watchlist or --symbols is required")
	}

	fetcher, ok := a.fetchers[source]
	if !ok || source == a.prices.Name() {
		return fmt.Errorf("collect needs a live source (yahoo|naver), got %q", source)
	}

	lookback := collectLookback
	if lookback <= 0 {
		lookback = a.cfg.RRG.LookbackDays
	}
	window := contracts.NewAnalysisWindow(contracts.TradingDay(time.Now()), lookback)

	start := time.Now()
	col := collector.NewCollector(fetcher, a.prices, a.log)
	results := col.CollectPrices(ctx, append([]string{benchmark}, symbols...), window.Start, window.End,
		collector.Config{Workers: collectWorkers})

	rows, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Printf("  ✗ %-16s %v\n", r.Symbol, r.Error)
			continue
		}
		rows += r.PriceCount
		fmt.Printf("  ✓ %-16s %d rows\n", r.Symbol, r.PriceCount)
	}

	if failed == len(results) {
		return fmt.Errorf("all %d symbols failed", failed)
	}
	if failed > 0 {
		PrintWarning(fmt.Sprintf("%d of %d symbols failed", failed, len(results)))
	}
	PrintSuccess(fmt.Sprintf("Stored %d rows from %s in %.2fs", rows, source, time.Since(start).Seconds()))
	return nil
}
