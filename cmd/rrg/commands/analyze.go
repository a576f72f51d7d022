package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rrg/internal/analysis"
	"github.com/wonny/rrg/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "RRG 계산 후 요약 테이블 출력",
	Long: `벤치마크 대비 종목들의 RS-Ratio / RS-Momentum을 계산하고
현재 사분면을 출력합니다.

종목은 --watchlist 또는 --symbols 로 지정합니다.
지정하지 않은 값은 환경변수 기본값(RRG_*)을 따릅니다.

Formats:
  table     - 터미널 테이블 (기본)
  markdown  - 마크다운 (터미널 렌더링, --raw 시 원문)
  json      - 차트 전체 (꼬리, 경계, 사분면 영역 포함)

Example:
  go run ./cmd/rrg analyze --watchlist nifty50
  go run ./cmd/rrg analyze --benchmark ^NSEI --symbols INFY.NS,TCS.NS --lookback 200 --tail 10
  go run ./cmd/rrg analyze --watchlist kospi-large --sort momentum --format json`,
	RunE: runAnalyze,
}

var (
	analyzeWatchlist string
	analyzeBenchmark string
	analyzeSymbols   []string
	analyzeSource    string
	analyzeLookback  int
	analyzeTail      int
	analyzeSort      string
	analyzeAsc       bool
	analyzeEnd       string
	analyzeFormat    string
	analyzeRaw       bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeWatchlist, "watchlist", "w", "", "watchlist 이름 (configs/watchlists.yaml)")
	analyzeCmd.Flags().StringVarP(&analyzeBenchmark, "benchmark", "b", "", "벤치마크 심볼 (예: ^NSEI)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeSymbols, "symbols", "s", nil, "종목 심볼 목록 (쉼표 구분)")
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "가격 소스 (yahoo|naver|postgres)")
	analyzeCmd.Flags().IntVar(&analyzeLookback, "lookback", 0, "조회 기간 (일, 60-500)")
	analyzeCmd.Flags().IntVar(&analyzeTail, "tail", 0, "꼬리 길이 (1-50)")
	analyzeCmd.Flags().StringVar(&analyzeSort, "sort", "ratio", "정렬 기준 (ratio|momentum|symbol|quadrant)")
	analyzeCmd.Flags().BoolVar(&analyzeAsc, "asc", false, "오름차순 정렬")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "기준일 YYYY-MM-DD (기본: 오늘)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table", "출력 형식 (table|markdown|json)")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "마크다운 원문 출력 (렌더링 안 함)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeWatchlist == "" && len(analyzeSymbols) == 0 {
		return fmt.Errorf("either --watchlist or --symbols is required")
	}

	format := strings.ToLower(analyzeFormat)
	if format != formatTable && format != formatMarkdown && format != formatJSON {
		return fmt.Errorf("unknown format %q (table|markdown|json)", analyzeFormat)
	}

	var end time.Time
	if analyzeEnd != "" {
		parsed, err := time.Parse("2006-01-02", analyzeEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		end = parsed
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	chart, err := a.service.Analyze(ctx, analysis.Request{
		Watchlist:    analyzeWatchlist,
		Benchmark:    analyzeBenchmark,
		Symbols:      analyzeSymbols,
		Source:       analyzeSource,
		LookbackDays: analyzeLookback,
		TailLength:   analyzeTail,
		SortBy:       analyzeSort,
		Ascending:    analyzeAsc,
		End:          end,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	switch format {
	case formatJSON:
		return writeJSON(os.Stdout, chart)
	case formatMarkdown:
		return writeMarkdown(os.Stdout, chart, analyzeRaw)
	default:
		writeTable(os.Stdout, chart)
	}

	if len(chart.Excluded) > 0 && len(chart.Instruments) == 0 {
		PrintWarning(fmt.Sprintf("all %d instruments were excluded", len(chart.Excluded)))
	}
	return nil
}

// exclusionLabel is the short form shown in table output
func exclusionLabel(e contracts.Exclusion) string {
	switch e.Reason {
	case contracts.ExclusionEmptySeries:
		return "no data"
	case contracts.ExclusionInsufficientData:
		return "too few observations"
	default:
		return "provider error"
	}
}
