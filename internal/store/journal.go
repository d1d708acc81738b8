package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Journal archives finished runs in SQLite.
type Journal struct {
	DB *sql.DB
}

func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	query := `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE,
		company TEXT,
		objective TEXT,
		verdict INTEGER,
		stage_count INTEGER,
		brief TEXT,
		created_at TEXT
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	return &Journal{DB: db}, nil
}

func (j *Journal) Record(run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO runs (run_id, company, objective, verdict, stage_count, brief, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	verdict := 0
	if run.Verdict {
		verdict = 1
	}
	_, err := j.DB.Exec(query, run.RunID, run.Company, run.Objective, verdict, run.StageCount, run.Brief, run.CreatedAt.Format(time.RFC3339))
	return err
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(limit int) ([]Run, error) {
	query := `SELECT id, run_id, company, objective, verdict, stage_count, brief, created_at FROM runs ORDER BY id DESC LIMIT ?`
	rows, err := j.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var verdict int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Company, &r.Objective, &verdict, &r.StageCount, &r.Brief, &createdAt); err != nil {
			return nil, err
		}
		r.Verdict = verdict == 1
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (j *Journal) Close() error {
	return j.DB.Close()
}
