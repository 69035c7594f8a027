package reminders

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reminders (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT    NOT NULL,
	due_at     INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	notified   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(notified, due_at);
`

// Store persists reminders in a local SQLite database. All read-modify-write
// units take the store mutex, which keeps the reminder loop and the session
// loop from interleaving on the same rows.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenStore opens or creates the database at path, creating parent
// directories as needed.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create reminder db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open reminder db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init reminder schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add persists a new unnotified reminder and returns it with its id filled.
func (s *Store) Add(ctx context.Context, text string, dueAt time.Time) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (text, due_at, created_at, notified) VALUES (?, ?, ?, 0)`,
		text, dueAt.Unix(), created.Unix())
	if err != nil {
		return Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	return Reminder{ID: id, Text: text, DueAt: dueAt.Truncate(time.Second), CreatedAt: created.Truncate(time.Second)}, nil
}

// PollDue returns every unnotified reminder due at or before now, earliest
// first and insertion order within the same due time, and marks the whole
// batch notified in the same transaction. A reminder therefore surfaces at
// most once; if the transaction fails nothing is marked and the batch stays
// due for the next poll.
func (s *Store) PollDue(ctx context.Context, now time.Time) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("poll due reminders: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, text, due_at, created_at FROM reminders
		 WHERE notified = 0 AND due_at <= ?
		 ORDER BY due_at ASC, id ASC`,
		now.Unix())
	if err != nil {
		return nil, fmt.Errorf("poll due reminders: %w", err)
	}
	due, err := scanReminders(rows)
	if err != nil {
		return nil, fmt.Errorf("poll due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]any, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	if _, err := tx.ExecContext(ctx,
		`UPDATE reminders SET notified = 1 WHERE id IN (`+placeholders+`)`, ids...); err != nil {
		return nil, fmt.Errorf("mark reminders notified: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("mark reminders notified: %w", err)
	}
	for i := range due {
		due[i].Notified = true
	}
	return due, nil
}

// Upcoming lists pending reminders due after now, soonest first.
func (s *Store) Upcoming(ctx context.Context, now time.Time, limit int) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, due_at, created_at FROM reminders
		 WHERE notified = 0 AND due_at > ?
		 ORDER BY due_at ASC, id ASC LIMIT ?`,
		now.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	list, err := scanReminders(rows)
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	return list, nil
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	defer rows.Close()
	var out []Reminder
	for rows.Next() {
		var r Reminder
		var due, created int64
		if err := rows.Scan(&r.ID, &r.Text, &due, &created); err != nil {
			return nil, err
		}
		r.DueAt = time.Unix(due, 0)
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
