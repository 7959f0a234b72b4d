package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/scheduler"
	"github.com/wonny/tradeblocks/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스냅샷 사전 계산 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/blocks scheduler start
  go run ./cmd/blocks scheduler list
  go run ./cmd/blocks scheduler run snapshot_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- snapshot_refresh: SCHEDULER_SNAPSHOT_REFRESH (기본 매일 오후 6시)
- benchmark_warm: 평일 오후 3시 40분 (장 마감 후 지수 캐시)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	sched, err := initScheduler(env)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	PrintSuccess("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printJobStats(sched.GetJobStats())
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	env, cleanup, err := bootstrap(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	sched, err := initScheduler(env)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()
	return emit(stats, func() {
		fmt.Println("Registered jobs:")
		for _, jobName := range sched.GetAllJobs() {
			fmt.Printf("  - %-18s %s\n", jobName, stats[jobName].Schedule)
		}
	})
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	sched, err := initScheduler(env)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if outputFormat == "text" {
		fmt.Printf("Running job: %s\n", jobName)
	}

	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if err := emit(result, func() {
		if result.Success {
			PrintSuccess(fmt.Sprintf("%s completed in %v", jobName, result.Duration.Round(time.Millisecond)))
		} else {
			PrintWarning(fmt.Sprintf("%s failed: %s", jobName, result.Error))
		}
	}); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("job %s failed", jobName)
	}
	return nil
}

func printJobStats(stats map[string]scheduler.JobStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, jobName := range names {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}
	}
}

func initScheduler(env *runtimeEnv) (*scheduler.Scheduler, error) {
	rf := env.svc.RiskFreeRate()
	blockIDs := env.cfg.Scheduler.BlockIDs

	sched := scheduler.New(env.log).WithRetry(2, 30*time.Second)

	if err := sched.AddJob(jobs.NewSnapshotRefreshJob(env.svc, blockIDs, rf, env.cfg.Scheduler.SnapshotRefresh, env.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewBenchmarkWarmJob(env.svc, blockIDs, env.svc.BenchmarkSymbol(), rf, env.log)); err != nil {
		return nil, err
	}

	return sched, nil
}
