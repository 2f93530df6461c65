package main

import (
	"context"
	"fmt"
	"os"

	"queuectl/internal/storage/sql/repository"
)

// runConfig dispatches `config get [key]`/`config set key value` (spec.md
// §6).
func runConfig(ctx context.Context, store *repository.Store, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: queuectl config <get|set> [arguments]")
		return 1
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "get":
		return runConfigGet(ctx, store, rest)
	case "set":
		return runConfigSet(ctx, store, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand %q\n", sub)
		return 1
	}
}

func runConfigGet(ctx context.Context, store *repository.Store, args []string) int {
	if len(args) == 0 {
		all, err := store.Config().All(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error: failed to read config:", err)
			return 1
		}
		for k, v := range all {
			fmt.Printf("%s = %s\n", k, v)
		}
		return 0
	}

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: queuectl config get [key]")
		return 1
	}

	value, ok, err := store.Config().Get(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to read config:", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "error: config key %q is not set\n", args[0])
		return 1
	}

	fmt.Println(value)
	return 0
}

func runConfigSet(ctx context.Context, store *repository.Store, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: queuectl config set <key> <value>")
		return 1
	}

	if err := store.Config().Set(ctx, args[0], args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to set config:", err)
		return 1
	}

	fmt.Printf("%s = %s\n", args[0], args[1])
	return 0
}
