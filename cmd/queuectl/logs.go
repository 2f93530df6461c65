package main

import (
	"context"
	"fmt"
	"os"

	"queuectl/internal/storage/sql/repository"
)

// runLogs shows the stored stdout/stderr, exit code, and duration for a
// job (spec.md §6).
func runLogs(ctx context.Context, store *repository.Store, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: queuectl logs <id>")
		return 1
	}

	job, err := store.Jobs().Get(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to get job:", err)
		return 1
	}
	if job == nil {
		fmt.Fprintf(os.Stderr, "error: job %q not found\n", args[0])
		return 1
	}

	fmt.Printf("id:       %s\n", job.ID)
	fmt.Printf("command:  %s\n", job.Command)
	fmt.Printf("state:    %s\n", job.State)
	fmt.Printf("attempts: %d\n", job.Attempts)
	if job.LastExitCode != nil {
		fmt.Printf("exit code: %d\n", *job.LastExitCode)
	}
	if job.DurationMS != nil {
		fmt.Printf("duration: %dms\n", *job.DurationMS)
	}
	fmt.Println("--- stdout ---")
	fmt.Println(job.Stdout)
	fmt.Println("--- stderr ---")
	fmt.Println(job.Stderr)
	return 0
}
