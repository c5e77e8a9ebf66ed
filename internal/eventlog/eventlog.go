// Package eventlog provides the SQLite-backed append-only log of applied
// action events. Rows are written once and never updated or deleted.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/holocron-engine/pkg/event"
)

// Log wraps a SQLite connection for the action event audit log.
type Log struct {
	conn *sqlx.DB
}

// Open opens or creates the event log at the given path. ":memory:" is
// accepted for tests.
func Open(path string) (*Log, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	l := &Log{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate event log: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	return l.conn.Close()
}

func (l *Log) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS action_events (
		id TEXT PRIMARY KEY,
		actor TEXT NOT NULL,
		targets TEXT NOT NULL,
		action TEXT NOT NULL,
		magnitude REAL NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		logged_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_action_events_actor ON action_events(actor);
	CREATE INDEX IF NOT EXISTS idx_action_events_logged ON action_events(logged_at);
	`
	_, err := l.conn.Exec(schema)
	return err
}

// Append writes one applied event to the log.
func (l *Log) Append(ctx context.Context, ev event.ActionEvent) error {
	targets, err := json.Marshal(ev.Targets)
	if err != nil {
		return fmt.Errorf("marshal targets: %w", err)
	}

	_, err = l.conn.ExecContext(ctx,
		`INSERT INTO action_events (id, actor, targets, action, magnitude, occurred_at, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID.String(), ev.Actor, string(targets), string(ev.Type), ev.Magnitude,
		ev.Timestamp.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append action event: %w", err)
	}
	return nil
}

type row struct {
	ID         string    `db:"id"`
	Actor      string    `db:"actor"`
	Targets    string    `db:"targets"`
	Action     string    `db:"action"`
	Magnitude  float64   `db:"magnitude"`
	OccurredAt time.Time `db:"occurred_at"`
	LoggedAt   time.Time `db:"logged_at"`
}

// Recent returns the most recent events for an actor, newest first.
// An empty actor returns events across all actors.
func (l *Log) Recent(ctx context.Context, actor string, limit int) ([]event.ActionEvent, error) {
	var (
		rows []row
		err  error
	)
	if actor == "" {
		err = l.conn.SelectContext(ctx, &rows,
			"SELECT * FROM action_events ORDER BY logged_at DESC, id DESC LIMIT ?", limit)
	} else {
		err = l.conn.SelectContext(ctx, &rows,
			"SELECT * FROM action_events WHERE actor = ? ORDER BY logged_at DESC, id DESC LIMIT ?", actor, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("load recent events: %w", err)
	}

	events := make([]event.ActionEvent, 0, len(rows))
	for _, r := range rows {
		ev, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Count returns the total number of logged events.
func (l *Log) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM action_events"); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r row) toEvent() (event.ActionEvent, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return event.ActionEvent{}, fmt.Errorf("parse event id %q: %w", r.ID, err)
	}

	var targets []string
	if err := json.Unmarshal([]byte(r.Targets), &targets); err != nil {
		return event.ActionEvent{}, fmt.Errorf("parse targets for %s: %w", r.ID, err)
	}

	return event.ActionEvent{
		ID:        id,
		Actor:     r.Actor,
		Targets:   targets,
		Type:      event.ActionType(r.Action),
		Magnitude: r.Magnitude,
		Timestamp: r.OccurredAt,
	}, nil
}
