package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rrg/internal/api"
	"github.com/wonny/rrg/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                        - Health check
  GET  /api/rrg                       - 임의 종목 RRG (benchmark, symbols, lookback, tail, sort, asc, end, source, format)
  GET  /api/rrg/watchlists/{name}     - watchlist RRG
  GET  /api/watchlists                - watchlist 목록

Example:
  go run ./cmd/rrg api
  go run ./cmd/rrg api --port 8080
  curl 'localhost:8089/api/rrg?benchmark=%5ENSEI&symbols=INFY.NS,TCS.NS&format=markdown'`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	rrgHandler := handlers.NewRRGHandler(a.service, a.log)
	router := api.NewRouter(rrgHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/rrg")
	fmt.Println("  GET  /api/rrg/watchlists/{name}")
	fmt.Println("  GET  /api/watchlists")
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
