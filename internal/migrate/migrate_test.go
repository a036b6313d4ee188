package migrate

import (
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "00001_init.sql", names[0])

	for _, name := range names {
		raw, err := migrations.ReadFile(migrationsDir + "/" + name)
		require.NoError(t, err)
		body := string(raw)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s lacks an Up section", name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s lacks a Down section", name)
	}
}

func TestCollectMigrations(t *testing.T) {
	goose.SetBaseFS(migrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	found, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].Version)
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New("", nil)
	assert.Error(t, err)
}
