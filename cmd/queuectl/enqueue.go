package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"queuectl/internal/storage/sql/repository"
)

// jobInput mirrors one entry of the enqueue payload (spec.md §6: "per-job
// fields: id?, command, priority?, run_at?, timeout_s?, max_retries?,
// backoff_base?").
type jobInput struct {
	ID          string   `json:"id"`
	Command     string   `json:"command"`
	Priority    int      `json:"priority"`
	RunAt       string   `json:"run_at"`
	TimeoutS    *int     `json:"timeout_s"`
	MaxRetries  *int     `json:"max_retries"`
	BackoffBase *float64 `json:"backoff_base"`
}

// runEnqueue accepts either a single JSON object, a JSON array of objects,
// or --file path pointing at either, and inserts one job per entry
// (spec.md §6 "insert one or many jobs").
func runEnqueue(ctx context.Context, store *repository.Store, args []string) int {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	file := fs.String("file", "", "path to a JSON file containing one job object or an array of jobs")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	var raw []byte
	switch {
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error: failed to read file:", err)
			return 1
		}
		raw = data
	case fs.NArg() == 1:
		raw = []byte(fs.Arg(0))
	default:
		fmt.Fprintln(os.Stderr, "usage: queuectl enqueue <json> | queuectl enqueue --file <path>")
		return 1
	}

	inputs, err := parseJobInputs(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: invalid job JSON:", err)
		return 1
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "error: no jobs to enqueue")
		return 1
	}

	snapshot, err := store.Config().Snapshot(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to read config:", err)
		return 1
	}

	ids := make([]string, 0, len(inputs))
	for i, in := range inputs {
		if in.Command == "" {
			fmt.Fprintf(os.Stderr, "error: job %d: command is required\n", i)
			return 1
		}
		job, err := store.Jobs().Create(ctx, repository.CreateParams{
			ID:          in.ID,
			Command:     in.Command,
			Priority:    in.Priority,
			RunAt:       in.RunAt,
			TimeoutS:    in.TimeoutS,
			MaxRetries:  in.MaxRetries,
			BackoffBase: in.BackoffBase,
		}, snapshot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: job %d: %s\n", i, err)
			return 1
		}
		ids = append(ids, job.ID)
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	return 0
}

// parseJobInputs accepts a single JSON object or an array of objects.
func parseJobInputs(raw []byte) ([]jobInput, error) {
	var arr []jobInput
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var single jobInput
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []jobInput{single}, nil
}
