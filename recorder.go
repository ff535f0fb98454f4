package cachebench

import (
	"database/sql"
	"runtime"
	"time"

	// SQLite driver for the optional sweep recorder.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteRecorder stores every sweep point of a run into a SQLite database,
// keyed by a unique run ID, so curves from repeated runs on the same host
// can be compared later. Inserts are batched and flushed at exit.
type SQLiteRecorder struct {
	db    *sql.DB
	runID string
	probe string
	seq   int

	rows      []recordedPoint
	batchSize int
}

type recordedPoint struct {
	probe    string
	seq      int
	stride   uint64
	arrSize  uint64
	result   float64
	increase float64
}

// NewSQLiteRecorder opens (or creates) the database at path, creates the
// schema if needed, and registers the run.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, NewAllocationError("NewSQLiteRecorder",
			"failed to open results database", err)
	}

	r := &SQLiteRecorder{
		db:        db,
		runID:     xid.New().String(),
		batchSize: 64,
	}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := r.insertRun(); err != nil {
		db.Close()
		return nil, err
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

func (r *SQLiteRecorder) createTables() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			go_os      TEXT NOT NULL,
			go_arch    TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sweep_points (
			run_id   TEXT NOT NULL,
			probe    TEXT NOT NULL,
			seq      INTEGER NOT NULL,
			stride   INTEGER NOT NULL,
			arr_size INTEGER NOT NULL,
			result   REAL NOT NULL,
			increase REAL NOT NULL,
			PRIMARY KEY (run_id, probe, seq)
		);
	`)
	if err != nil {
		return NewAllocationError("SQLiteRecorder.createTables",
			"failed to create schema", err)
	}
	return nil
}

func (r *SQLiteRecorder) insertRun() error {
	_, err := r.db.Exec(
		`INSERT INTO runs (id, started_at, go_os, go_arch) VALUES (?, ?, ?, ?)`,
		r.runID, time.Now().UTC().Format(time.RFC3339), runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return NewAllocationError("SQLiteRecorder.insertRun",
			"failed to register run", err)
	}
	return nil
}

// RunID returns the unique ID of this run.
func (r *SQLiteRecorder) RunID() string {
	return r.runID
}

// SetProbe marks the probe stage the following points belong to.
func (r *SQLiteRecorder) SetProbe(name string) {
	r.probe = name
	r.seq = 0
}

// Write buffers one sweep point.
func (r *SQLiteRecorder) Write(res Result) {
	r.rows = append(r.rows, recordedPoint{
		probe:    r.probe,
		seq:      r.seq,
		stride:   res.Params.Stride,
		arrSize:  res.Params.ArrSize,
		result:   res.Latency,
		increase: res.Increase,
	})
	r.seq++
	if len(r.rows) >= r.batchSize {
		r.Flush()
	}
}

// Flush inserts the buffered points in one transaction.
func (r *SQLiteRecorder) Flush() {
	if len(r.rows) == 0 {
		return
	}
	tx, err := r.db.Begin()
	if err != nil {
		panic(err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO sweep_points (run_id, probe, seq, stride, arr_size, result, increase)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	for _, row := range r.rows {
		_, err := stmt.Exec(r.runID, row.probe, row.seq,
			int64(row.stride), int64(row.arrSize), row.result, row.increase)
		if err != nil {
			panic(err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		panic(err)
	}
	r.rows = nil
}

// Close flushes and closes the database.
func (r *SQLiteRecorder) Close() error {
	r.Flush()
	return r.db.Close()
}
