package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zerolog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the HTTP server read history while the watcher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			trigger_type      TEXT,
			ticker            TEXT NOT NULL,
			name              TEXT,
			months            INTEGER,
			alpha             REAL,
			last_date         TEXT,
			last_close        REAL,
			observations      INTEGER,
			annual_return     REAL,
			annual_volatility REAL,
			var               REAL,
			es                REAL,
			error             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker_ts ON analysis_runs(ticker, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable stores statistics of failed runs as NULL.
func nullable(v float64, ok bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok := !rec.Failed()
	var lastDate sql.NullString
	if ok && !rec.LastDate.IsZero() {
		lastDate = sql.NullString{String: rec.LastDate.Format(time.DateOnly), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(id, timestamp, trigger_type, ticker, name, months, alpha,
		 last_date, last_close, observations,
		 annual_return, annual_volatility, var, es, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Timestamp.Unix(), string(rec.Trigger), rec.Ticker, rec.Name,
		rec.Months, rec.Alpha,
		lastDate, nullable(rec.LastClose, ok), rec.Observations,
		nullable(rec.Stats.AnnualReturn, ok), nullable(rec.Stats.AnnualVolatility, ok),
		nullable(rec.Stats.VaR, ok), nullable(rec.Stats.ES, ok),
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecentRuns(ticker string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT
		id, timestamp, trigger_type, ticker, name, months, alpha,
		last_date, last_close, observations,
		annual_return, annual_volatility, var, es, error
		FROM analysis_runs WHERE ticker = ?
		ORDER BY timestamp DESC, rowid DESC LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec                    RunRecord
			ts                     int64
			trigger, name, errText sql.NullString
			lastDate               sql.NullString
			lastClose, ret, vol    sql.NullFloat64
			varV, es               sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &ts, &trigger, &rec.Ticker, &name, &rec.Months, &rec.Alpha,
			&lastDate, &lastClose, &rec.Observations,
			&ret, &vol, &varV, &es, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0)
		rec.Trigger = Trigger(trigger.String)
		rec.Name = name.String
		rec.Error = errText.String
		if lastDate.Valid {
			if d, err := time.Parse(time.DateOnly, lastDate.String); err == nil {
				rec.LastDate = d
			}
		}
		rec.LastClose = lastClose.Float64
		rec.Stats.AnnualReturn = ret.Float64
		rec.Stats.AnnualVolatility = vol.Float64
		rec.Stats.VaR = varV.Float64
		rec.Stats.ES = es.Float64
		rec.Stats.Alpha = rec.Alpha
		rec.Stats.Observations = rec.Observations
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
