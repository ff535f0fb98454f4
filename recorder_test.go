package cachebench

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorderPersistsSweepPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	r.SetProbe("cache_line_size")
	r.Write(Result{Params: Params{Stride: 16, ArrSize: 4 * Megabyte}, Latency: 5e8, Increase: 5e8})
	r.Write(Result{Params: Params{Stride: 32, ArrSize: 4 * Megabyte}, Latency: 6e8, Increase: 1.2})
	r.SetProbe("cache_size")
	r.Write(Result{Params: Params{Stride: 128, ArrSize: 32 * Kilobyte}, Latency: 1e7, Increase: 1})
	r.Flush()

	var n int
	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM sweep_points WHERE run_id = ?`, r.RunID()).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Sequence numbers restart at every probe stage.
	var seq int
	err = r.db.QueryRow(
		`SELECT seq FROM sweep_points WHERE run_id = ? AND probe = 'cache_size'`,
		r.RunID()).Scan(&seq)
	require.NoError(t, err)
	assert.Equal(t, 0, seq)
}

func TestSQLiteRecorderSeparatesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")

	first, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	first.SetProbe("cache_size")
	first.Write(Result{Params: Params{Stride: 128, ArrSize: 32 * Kilobyte}, Latency: 1e7, Increase: 1})
	require.NoError(t, first.Close())

	second, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer second.Close()

	assert.NotEqual(t, first.RunID(), second.RunID())

	var runs int
	err = second.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
}
