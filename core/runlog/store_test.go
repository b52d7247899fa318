package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Record{
		{Timestamp: base, RunID: "r1", Dataset: "d1", Step: "duplicate", Status: "succeeded"},
		{Timestamp: base.Add(time.Minute), RunID: "r1", Dataset: "d1", Step: "base_run", Status: "failed", Error: "exit 1"},
		{Timestamp: base.Add(2 * time.Minute), RunID: "r2", Dataset: "d2", Step: "merge", Status: "succeeded", Tables: []string{"a.csv"}},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sampleRecords() {
		require.NoError(t, s.Append(ctx, r))
	}
	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "duplicate", all[0].Step)
	assert.Equal(t, []string{"a.csv"}, all[2].Tables)

	failed, err := s.Query(ctx, Query{Status: "failed"})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "exit 1", failed[0].Error)

	r1, err := s.Query(ctx, Query{RunID: "r1"})
	require.NoError(t, err)
	assert.Len(t, r1, 2)

	late, err := s.Query(ctx, Query{Start: all[1].Timestamp, Dataset: "d2"})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "r2", late[0].RunID)
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "logs", "runs.jsonl"), 1, 2, 0)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestJSONLStoreEmpty(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"), 0, 0, 0)
	require.NoError(t, err)
	recs, err := s.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore("file:runlog_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "sqlite", "none"} {
		cfg := Config{Backend: backend, Path: filepath.Join(dir, "runs."+backend)}
		require.NoError(t, cfg.Validate())
		s, err := Open(cfg)
		require.NoError(t, err, backend)
		require.NoError(t, s.Append(context.Background(), Record{RunID: "x"}))
		require.NoError(t, s.Close())
	}
	_, err := Open(Config{Backend: "csv"})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "jsonl", c.Backend)
	assert.NoError(t, c.Validate())
	assert.Error(t, Config{Backend: "sqlite"}.Validate())
	assert.Error(t, Config{Backend: "kafka", Path: "x"}.Validate())
}
