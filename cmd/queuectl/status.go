package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"queuectl/internal/domain"
	"queuectl/internal/storage/sql/repository"
	"queuectl/internal/supervisor"
)

type statusOutput struct {
	StateCounts      map[domain.JobState]int `json:"state_counts"`
	OldestPendingAge *float64                `json:"oldest_pending_age_s,omitempty"`
	AvgDurationMS    *float64                `json:"avg_duration_ms,omitempty"`
	ActiveWorkers    int                      `json:"active_workers"`
	Config           map[string]string        `json:"config"`
}

// runStatus reports job-state counts, worker counts, oldest-pending age,
// average duration, and config (spec.md §6).
func runStatus(ctx context.Context, store *repository.Store, args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "emit JSON instead of a human-readable summary")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	stats, err := store.Jobs().Stats(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to read job stats:", err)
		return 1
	}

	activeWorkers, err := store.Workers().ActiveWorkers(ctx, supervisor.ActiveWorkerThresholdS)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to read active workers:", err)
		return 1
	}

	cfg, err := store.Config().All(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to read config:", err)
		return 1
	}

	out := statusOutput{
		StateCounts:      stats.StateCounts,
		OldestPendingAge: stats.OldestPendingAge,
		AvgDurationMS:    stats.AvgDurationMS,
		ActiveWorkers:    len(activeWorkers),
		Config:           cfg,
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return jsonResult(enc.Encode(out))
	}

	fmt.Println("job states:")
	for _, state := range []domain.JobState{domain.JobPending, domain.JobProcessing, domain.JobFailed, domain.JobCompleted, domain.JobDead} {
		fmt.Printf("  %-10s %d\n", state, out.StateCounts[state])
	}
	if out.OldestPendingAge != nil {
		fmt.Printf("oldest pending age: %.1fs\n", *out.OldestPendingAge)
	}
	if out.AvgDurationMS != nil {
		fmt.Printf("avg duration: %.1fms\n", *out.AvgDurationMS)
	}
	fmt.Printf("active workers: %d\n", out.ActiveWorkers)
	fmt.Println("config:")
	for k, v := range out.Config {
		fmt.Printf("  %s = %s\n", k, v)
	}
	return 0
}

func jsonResult(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to encode JSON:", err)
		return 1
	}
	return 0
}
