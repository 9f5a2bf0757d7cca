package health

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db      *sql.DB
	mu      sync.Mutex
	started time.Time
	log     zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so status reads don't block run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:      db,
		started: time.Now().UTC(),
		log:     log.With().Str("component", "health").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("health recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			success   INTEGER NOT NULL,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSuccess() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`INSERT INTO runs (timestamp, success, error) VALUES (?, 1, NULL)`,
		time.Now().Unix())
	return err
}

func (r *SQLiteRecorder) RecordFailure(errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`INSERT INTO runs (timestamp, success, error) VALUES (?, 0, ?)`,
		time.Now().Unix(), errMsg)
	return err
}

func (r *SQLiteRecorder) Status() (*Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := &Status{LastStatus: "Never run", StartedAt: r.started}

	row := r.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM runs`)
	if err := row.Scan(&st.TotalRuns, &st.Successes); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	st.Failures = st.TotalRuns - st.Successes

	if st.TotalRuns > 0 {
		var ts int64
		var success int
		var errMsg sql.NullString
		row = r.db.QueryRow(`SELECT timestamp, success, error FROM runs ORDER BY id DESC LIMIT 1`)
		if err := row.Scan(&ts, &success, &errMsg); err != nil {
			return nil, fmt.Errorf("last run: %w", err)
		}
		st.LastRun = time.Unix(ts, 0).UTC()
		if success == 1 {
			st.LastStatus = "✅ Success"
		} else {
			st.LastStatus = "❌ Failed"
			st.LastError = errMsg.String
		}
	}
	return st, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing health recorder")
	return r.db.Close()
}
