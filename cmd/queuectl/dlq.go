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

// runDLQ dispatches `dlq list|retry` (spec.md §6).
func runDLQ(ctx context.Context, store *repository.Store, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: queuectl dlq <list|retry> [arguments]")
		return 1
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return runDLQList(ctx, store, rest)
	case "retry":
		return runDLQRetry(ctx, store, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown dlq subcommand %q\n", sub)
		return 1
	}
}

func runDLQList(ctx context.Context, store *repository.Store, args []string) int {
	fs := flag.NewFlagSet("dlq list", flag.ContinueOnError)
	limit := fs.Int("limit", 0, "maximum number of dead jobs to return (0 = unlimited)")
	asJSON := fs.Bool("json", false, "emit JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	jobs, err := store.Jobs().List(ctx, repository.ListParams{State: domain.JobDead, Limit: *limit})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to list dead jobs:", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return jsonResult(enc.Encode(jobs))
	}

	if len(jobs) == 0 {
		fmt.Println("no dead jobs")
		return 0
	}

	fmt.Printf("%-36s  %-8s  %-10s  %s\n", "id", "attempts", "exit_code", "command")
	for _, j := range jobs {
		exitCode := "-"
		if j.LastExitCode != nil {
			exitCode = fmt.Sprintf("%d", *j.LastExitCode)
		}
		fmt.Printf("%-36s  %-8d  %-10s  %s\n", j.ID, j.Attempts, exitCode, j.Command)
	}
	return 0
}

func runDLQRetry(ctx context.Context, store *repository.Store, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: queuectl dlq retry <id>")
		return 1
	}

	ok, err := store.Jobs().RetryFromDLQ(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to retry job:", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "error: job %q is not dead or does not exist\n", args[0])
		return 1
	}

	fmt.Printf("job %s moved back to pending\n", args[0])
	return 0
}
