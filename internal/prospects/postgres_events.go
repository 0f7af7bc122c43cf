package prospects

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresEventLog stores timelines in prospect_events.
type PostgresEventLog struct {
	db DB
}

// NewPostgresEventLog creates an event log on a pgx pool.
func NewPostgresEventLog(pool *pgxpool.Pool) *PostgresEventLog {
	if pool == nil {
		panic("prospects: pgx pool required")
	}
	return &PostgresEventLog{db: pool}
}

// NewPostgresEventLogWithDB allows injecting a mock database for testing.
func NewPostgresEventLogWithDB(db DB) *PostgresEventLog {
	return &PostgresEventLog{db: db}
}

func (l *PostgresEventLog) Append(ctx context.Context, e *Event) error {
	err := l.db.QueryRow(ctx, `
		INSERT INTO prospect_events (prospect_id, event_type, event_date, note)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		e.ProspectID, e.Type, e.Date, e.Note).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("prospects: append event: %w", err)
	}
	return nil
}

func (l *PostgresEventLog) ListByProspect(ctx context.Context, prospectID string) ([]Event, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, prospect_id, event_type, event_date, note
		FROM prospect_events WHERE prospect_id = $1 ORDER BY event_date ASC, id ASC`, prospectID)
	if err != nil {
		return nil, fmt.Errorf("prospects: list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (l *PostgresEventLog) ListBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, prospect_id, event_type, event_date, note
		FROM prospect_events
		WHERE event_date >= $1 AND event_date < $2
		ORDER BY event_date ASC, id ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("prospects: list events between: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (l *PostgresEventLog) DeleteByProspect(ctx context.Context, prospectID string) error {
	if _, err := l.db.Exec(ctx, `DELETE FROM prospect_events WHERE prospect_id = $1`, prospectID); err != nil {
		return fmt.Errorf("prospects: delete events: %w", err)
	}
	return nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ProspectID, &e.Type, &e.Date, &e.Note); err != nil {
			return nil, fmt.Errorf("prospects: scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
