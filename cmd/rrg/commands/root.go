package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rrg",
	Short: "Relative Rotation Graph - 벤치마크 대비 종목 로테이션 분석",
	Long: `RRG Unified CLI

벤치마크 대비 상대강도(RS-Ratio)와 그 모멘텀(RS-Momentum)을 계산해
종목을 Leading / Weakening / Lagging / Improving 사분면에 배치합니다.

Usage:
  go run ./cmd/rrg [command]

Examples:
  go run ./cmd/rrg analyze --watchlist nifty50
  go run ./cmd/rrg analyze --benchmark ^NSEI --symbols INFY.NS,TCS.NS --format markdown
  go run ./cmd/rrg api
  go run ./cmd/rrg schedule start
  go run ./cmd/rrg collect --watchlist nifty50`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
}
