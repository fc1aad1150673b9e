package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costs/internal/core"
	"costs/internal/storage"
	"costs/internal/storage/memory"
)

const seedYAML = `
- id: 123123
  first_name: moshe
  last_name: israeli
  birthday: "1990-01-11"
  marital_status: single
- id: 42
  first_name: ada
  last_name: lovelace
`

func TestParseUsersSeed(t *testing.T) {
	users, err := storage.ParseUsersSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(123123), users[0].ID)
	assert.Equal(t, time.Date(1990, 1, 11, 0, 0, 0, 0, time.UTC), users[0].Birthday)
	assert.True(t, users[1].Birthday.IsZero())
}

func TestParseUsersSeedErrors(t *testing.T) {
	_, err := storage.ParseUsersSeed([]byte("- id: 1\n- id: 1\n"))
	assert.ErrorContains(t, err, "duplicate id")

	_, err = storage.ParseUsersSeed([]byte("- id: 1\n  birthday: yesterday\n"))
	assert.ErrorContains(t, err, "birthday")

	_, err = storage.ParseUsersSeed([]byte("not: [a list"))
	assert.Error(t, err)
}

func TestLoadAndSeedUsersKeepsTotals(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	store := memory.New(core.User{ID: 42, FirstName: "old", Total: 17})
	users, err := storage.LoadUsersSeed(path)
	require.NoError(t, err)
	require.NoError(t, storage.SeedUsers(ctx, store, users))

	u, err := store.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.FirstName)
	assert.InDelta(t, 17.0, u.Total, 1e-9)

	_, err = store.GetUser(ctx, 123123)
	assert.NoError(t, err)

	_, err = storage.LoadUsersSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
