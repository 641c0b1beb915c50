package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/five-acts/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	dir := t.TempDir()
	tests := []struct {
		backend string
		want    any
	}{
		{config.BackendFile, &FileStorage{}},
		{config.BackendRedis, &RedisStorage{}},
		{config.BackendSQLite, &SQLiteStorage{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{
				SaveBackend: tt.backend,
				SaveDir:     dir,
				RedisURL:    mr.Addr(),
				SQLitePath:  filepath.Join(dir, "saves.db"),
				DataDir:     dir,
			}
			s, err := Open(ctx, cfg, testLogger())
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
			assert.NoError(t, s.Ping(ctx))
		})
	}

	_, err = Open(ctx, &config.Config{SaveBackend: "tape"}, testLogger())
	assert.Error(t, err)
}
