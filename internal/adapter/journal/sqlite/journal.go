package sqlitejournal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"outpost/internal/app/ports"
)

// Journal is an append-only event log in a standalone SQLite file.
type Journal struct {
	db *sql.DB
}

func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seq INTEGER NOT NULL,
			topic TEXT NOT NULL,
			person_id TEXT NOT NULL DEFAULT '',
			occurred_ms INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS events_person ON events(person_id, occurred_ms);`,
		`CREATE INDEX IF NOT EXISTS events_topic ON events(topic, occurred_ms);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Append(ctx context.Context, events []ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events(seq, topic, person_id, occurred_ms, payload) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", e.Topic, err)
		}
		if _, err := stmt.ExecContext(ctx, e.Seq, e.Topic, e.PersonID, e.OccurredAt.UnixMilli(), string(payload)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns matching events oldest first; Limit keeps the newest ones.
func (j *Journal) List(ctx context.Context, q ports.JournalQuery) ([]ports.Event, error) {
	var where []string
	var args []any
	if q.PersonID != "" {
		where = append(where, "person_id = ?")
		args = append(args, q.PersonID)
	}
	if q.Topic != "" {
		where = append(where, "topic = ?")
		args = append(args, q.Topic)
	}
	if !q.Since.IsZero() {
		where = append(where, "occurred_ms >= ?")
		args = append(args, q.Since.UnixMilli())
	}
	query := `SELECT seq, topic, person_id, occurred_ms, payload FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.Event
	for rows.Next() {
		var (
			e       ports.Event
			ms      int64
			payload string
		)
		if err := rows.Scan(&e.Seq, &e.Topic, &e.PersonID, &ms, &payload); err != nil {
			return nil, err
		}
		e.OccurredAt = time.UnixMilli(ms).UTC()
		e.Payload = map[string]any{}
		_ = json.Unmarshal([]byte(payload), &e.Payload)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}
