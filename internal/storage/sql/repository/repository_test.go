package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"queuectl/internal/domain"
	sqlstore "queuectl/internal/storage/sql"
	"queuectl/internal/storage/sql/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "queuectl-test.db")

	store, err := sqlstore.NewSQLiteStore(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func repoCreateParams(t *testing.T, command string) repository.CreateParams {
	t.Helper()
	return repository.CreateParams{Command: command}
}

func repoCreateParamsRaw(command string, priority int) repository.CreateParams {
	return repository.CreateParams{Command: command, Priority: priority}
}

func repoListParams(state domain.JobState, limit int) repository.ListParams {
	return repository.ListParams{State: state, Limit: limit}
}

func randWorkerID(i int) string {
	return fmt.Sprintf("worker-%d", i)
}
