package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(migrations, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", e.Name())
		assert.Contains(t, string(body), "-- +goose Down", e.Name())
		assert.True(t, strings.HasSuffix(e.Name(), ".sql"))
	}
}

func TestMigrate_BadDSN(t *testing.T) {
	err := Migrate(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
