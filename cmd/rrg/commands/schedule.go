package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/rrg/internal/s0_data/collector"
	"github.com/wonny/rrg/internal/scheduler"
	"github.com/wonny/rrg/internal/scheduler/jobs"
	"github.com/wonny/rrg/internal/watchlist"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "스케줄러 관리",
	Long: `watchlist별 RRG 스냅샷(사분면 전환 로그)과 가격 수집을 주기 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/rrg schedule start
  go run ./cmd/rrg schedule start --watchlists nifty50 --cron "0 45 15 * * 1-5"
  go run ./cmd/rrg schedule run rrg_snapshot:nifty50`,
}

var (
	scheduleStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- rrg_snapshot:<watchlist>: 평일 장 마감 후 (사분면 전환 로그)
- price_collection:<watchlist>: 평일 저녁 (DATABASE_URL 설정 시, 가격 저장)
- cache_cleanup: 5분마다 (Redis 미사용 시 메모리 캐시 정리)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	scheduleListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	scheduleRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var (
	scheduleWatchlists []string
	snapshotCron       string
	collectionCron     string
	collectionWorkers  int
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)

	scheduleCmd.PersistentFlags().StringSliceVar(&scheduleWatchlists, "watchlists", nil, "대상 watchlist (기본: 전체)")
	scheduleCmd.PersistentFlags().StringVar(&snapshotCron, "cron", "0 30 16 * * 1-5", "스냅샷 cron (초 포함)")
	scheduleCmd.PersistentFlags().StringVar(&collectionCron, "collect-cron", "0 0 18 * * 1-5", "가격 수집 cron (초 포함)")
	scheduleCmd.PersistentFlags().IntVar(&collectionWorkers, "workers", 4, "가격 수집 워커 수")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	PrintSuccess("Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for name, stat := range sched.GetJobStats() {
		fmt.Printf("  - %-32s %s\n", name, stat.Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}

	PrintSuccess(fmt.Sprintf("Job %s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

// initScheduler registers one snapshot job per watchlist, plus a collection job when prices can be stored
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	if a.watchlists == nil {
		return nil, fmt.Errorf("no watchlist file at %s", a.cfg.RRG.WatchlistFile)
	}

	selected, err := selectWatchlists(a.watchlists, scheduleWatchlists)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log, scheduler.DefaultOptions())

	for _, w := range selected {
		if err := sched.AddJob(jobs.NewRotationSnapshotJob(a.service, w.Name, snapshotCron, a.log)); err != nil {
			return nil, err
		}

		if a.prices == nil {
			continue
		}
		source := w.Source
		if source == "" {
			source = a.cfg.RRG.Source
		}
		fetcher, ok := a.fetchers[source]
		if !ok || source == a.prices.Name() {
			// postgres 소스는 수집 대상이 아님
			continue
		}
		col := collector.NewCollector(fetcher, a.prices, a.log)
		job := jobs.NewPriceCollectionJob(col, w, a.cfg.RRG.LookbackDays, collectionWorkers, collectionCron, a.log)
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	if len(a.memCaches) > 0 {
		cleaners := make([]jobs.StaleCleaner, 0, len(a.memCaches))
		for _, c := range a.memCaches {
			cleaners = append(cleaners, c)
		}
		if err := sched.AddJob(jobs.NewCacheCleanupJob(cleaners, a.log)); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

// selectWatchlists resolves names in order; no names means every watchlist
func selectWatchlists(registry *watchlist.Registry, names []string) ([]watchlist.Watchlist, error) {
	if len(names) == 0 {
		return registry.All(), nil
	}

	selected := make([]watchlist.Watchlist, 0, len(names))
	for _, name := range names {
		w, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, w)
	}
	return selected, nil
}
