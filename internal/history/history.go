package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/mkeller/ablate/internal/record"
	"github.com/mkeller/ablate/internal/stats"
)

// Store archives completed analyses so sweeps can be compared across time.
type Store struct {
	db *sql.DB
}

type Analysis struct {
	ID        string
	Family    string
	Baseline  string
	NumKeys   int
	CreatedAt time.Time
}

type Row struct {
	Key         string
	MeanAcc     float64
	StdAcc      float64
	MeanTime    float64
	StdTime     float64
	NumRuns     int
	AccP        sql.NullFloat64
	TimeP       sql.NullFloat64
	Significant bool
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
  id         TEXT PRIMARY KEY,
  family     TEXT,
  baseline   TEXT,
  num_keys   INTEGER,
  created_at TEXT
);`,
		`CREATE TABLE IF NOT EXISTS analysis_rows (
  analysis_id TEXT,
  key         TEXT,
  mean_acc    REAL,
  std_acc     REAL,
  mean_time   REAL,
  std_time    REAL,
  num_runs    INTEGER,
  acc_p       REAL,
  time_p      REAL,
  significant INTEGER
);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing history schema: %w", err)
		}
	}
	return nil
}

// RecordAnalysis stores one analysis snapshot and returns its id.
// Comparison columns stay NULL for the baseline row and when the comparator
// produced nothing.
func (s *Store) RecordAnalysis(family, baseline string, set *record.Set, comps []stats.Comparison) (string, error) {
	id := uuid.NewString()
	byKey := stats.ByKey(comps)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO analyses (id, family, baseline, num_keys, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, family, baseline, set.Len(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting analysis: %w", err)
	}

	for _, key := range set.Keys {
		rec := set.Records[key]
		var accP, timeP any
		significant := 0
		if c, ok := byKey[key]; ok {
			accP = c.Acc.P
			timeP = c.Time.P
			if c.Significant {
				significant = 1
			}
		}
		_, err = tx.Exec(
			`INSERT INTO analysis_rows (analysis_id, key, mean_acc, std_acc, mean_time, std_time, num_runs, acc_p, time_p, significant)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, key, rec.MeanAcc, rec.StdAcc, rec.MeanTime, rec.StdTime, rec.NumRuns, accP, timeP, significant,
		)
		if err != nil {
			return "", fmt.Errorf("inserting analysis row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing analysis: %w", err)
	}
	return id, nil
}

// Analyses returns archived analyses, most recent first.
func (s *Store) Analyses() ([]Analysis, error) {
	rows, err := s.db.Query(
		`SELECT id, family, baseline, num_keys, created_at FROM analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var created string
		if err := rows.Scan(&a.ID, &a.Family, &a.Baseline, &a.NumKeys, &created); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			a.CreatedAt = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Rows returns the stored per-key rows for one analysis, in insert order.
func (s *Store) Rows(analysisID string) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT key, mean_acc, std_acc, mean_time, std_time, num_runs, acc_p, time_p, significant
		 FROM analysis_rows WHERE analysis_id = ? ORDER BY rowid`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying analysis rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var significant int
		if err := rows.Scan(&r.Key, &r.MeanAcc, &r.StdAcc, &r.MeanTime, &r.StdTime, &r.NumRuns, &r.AccP, &r.TimeP, &significant); err != nil {
			return nil, fmt.Errorf("scanning analysis row: %w", err)
		}
		r.Significant = significant != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
