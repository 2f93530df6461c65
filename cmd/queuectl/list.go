package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"queuectl/internal/domain"
	"queuectl/internal/storage/sql/repository"
)

// runList lists jobs, optionally filtered by state and limited, per
// spec.md §6: `list [--state S] [--limit N] [--pending-ready-only] [--json]`.
func runList(ctx context.Context, store *repository.Store, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	state := fs.String("state", "", "filter by job state (pending|processing|failed|completed|dead)")
	limit := fs.Int("limit", 0, "maximum number of jobs to return (0 = unlimited)")
	pendingReadyOnly := fs.Bool("pending-ready-only", false, "only pending jobs whose run_at has passed")
	asJSON := fs.Bool("json", false, "emit JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	jobs, err := store.Jobs().List(ctx, repository.ListParams{
		State:            domain.JobState(*state),
		Limit:            *limit,
		PendingReadyOnly: *pendingReadyOnly,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to list jobs:", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return jsonResult(enc.Encode(jobs))
	}

	if len(jobs) == 0 {
		fmt.Println("no jobs")
		return 0
	}

	fmt.Printf("%-36s  %-10s  %-8s  %-5s  %s\n", "id", "state", "attempts", "prio", "command")
	for _, j := range jobs {
		fmt.Printf("%-36s  %-10s  %-8d  %-5d  %s\n", j.ID, j.State, j.Attempts, j.Priority, j.Command)
	}
	return 0
}
