package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/atinyakov/jobboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, &config.Options{Storage: config.StorageFile, StoragePath: filepath.Join(dir, "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	_ = s.Close()

	s, err = Open(ctx, &config.Options{Storage: config.StorageSQLite, StorageDSN: filepath.Join(dir, "s.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	_ = s.Close()

	_, err = Open(ctx, &config.Options{Storage: "tape"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
