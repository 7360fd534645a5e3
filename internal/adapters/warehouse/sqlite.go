package warehouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id           TEXT NOT NULL,
	player_id        TEXT NOT NULL,
	event_type       TEXT NOT NULL,
	event_time       TEXT NOT NULL,
	insert_id        TEXT NOT NULL DEFAULT '',
	event_properties TEXT NOT NULL DEFAULT '{}',
	user_properties  TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_events_player ON events(player_id);
CREATE INDEX IF NOT EXISTS idx_events_job ON events(job_id);
`

// SQLiteStore persists normalized events in a local SQLite database. It
// stands in for a real warehouse while keeping imports durable across
// restarts.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// event schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// WriteEvents appends a batch of normalized events in one transaction.
func (s *SQLiteStore) WriteEvents(ctx context.Context, jobID string, events []model.NormalizedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (job_id, player_id, event_type, event_time, insert_id, event_properties, user_properties)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare write: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		eventProps, err := encodeProps(e.EventProperties)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		userProps, err := encodeProps(e.UserProperties)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, jobID, e.PlayerID, e.EventType, e.EventTime, e.InsertID, eventProps, userProps); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}

	metrics.RecordWarehouseWriteLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// EventsForPlayer returns every event carrying the player's identifier.
func (s *SQLiteStore) EventsForPlayer(ctx context.Context, playerID string) ([]model.NormalizedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if playerID == "" {
		return []model.NormalizedEvent{}, nil
	}
	start := time.Now()

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT event_type, event_time, player_id, insert_id, event_properties, user_properties
		   FROM events
		  WHERE player_id = ?
		  ORDER BY id ASC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query player events: %w", err)
	}
	defer rows.Close()

	out := make([]model.NormalizedEvent, 0)
	for rows.Next() {
		var e model.NormalizedEvent
		var eventProps, userProps string
		if err := rows.Scan(&e.EventType, &e.EventTime, &e.PlayerID, &e.InsertID, &eventProps, &userProps); err != nil {
			return nil, fmt.Errorf("scan player event: %w", err)
		}
		if e.EventProperties, err = decodeProps(eventProps); err != nil {
			return nil, err
		}
		if e.UserProperties, err = decodeProps(userProps); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query player events: %w", err)
	}

	metrics.RecordWarehouseQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// PlayerIDs returns the distinct player identifiers across all events.
func (s *SQLiteStore) PlayerIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT DISTINCT player_id FROM events WHERE player_id != '' ORDER BY player_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query player ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan player id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query player ids: %w", err)
	}
	return ids, nil
}

// DeleteJob removes all events attributed to an import job.
func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM events WHERE job_id = ?`, jobID)
	if err != nil {
		return 0, fmt.Errorf("delete job events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete job events: %w", err)
	}
	return int(n), nil
}

// Count returns the number of events held.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// EventTypeCounts returns event counts grouped by normalized type.
func (s *SQLiteStore) EventTypeCounts(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT event_type, COUNT(*) FROM events GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("count event types: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan event type count: %w", err)
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count event types: %w", err)
	}
	return counts, nil
}

// Sample returns up to n events in insertion order.
func (s *SQLiteStore) Sample(ctx context.Context, n int) ([]model.NormalizedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []model.NormalizedEvent{}, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT event_type, event_time, player_id, insert_id, event_properties, user_properties
		   FROM events
		  ORDER BY id ASC
		  LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sample events: %w", err)
	}
	defer rows.Close()

	out := make([]model.NormalizedEvent, 0, n)
	for rows.Next() {
		var e model.NormalizedEvent
		var eventProps, userProps string
		if err := rows.Scan(&e.EventType, &e.EventTime, &e.PlayerID, &e.InsertID, &eventProps, &userProps); err != nil {
			return nil, fmt.Errorf("scan sampled event: %w", err)
		}
		if e.EventProperties, err = decodeProps(eventProps); err != nil {
			return nil, err
		}
		if e.UserProperties, err = decodeProps(userProps); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample events: %w", err)
	}
	return out, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func encodeProps(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}
	return string(encoded), nil
}

func decodeProps(value string) (map[string]any, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "{}" {
		return map[string]any{}, nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(value), &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return props, nil
}

var _ Store = (*SQLiteStore)(nil)
