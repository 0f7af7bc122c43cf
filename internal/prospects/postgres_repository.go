package prospects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const prospectColumns = `id, name, phone, email, relationship, source, status, priority,
		       created_at, last_contact, next_action, next_action_type, notes,
		       ha_scheduled, ha_completed, client_start_date`

// PostgresRepository stores prospects in the prospects table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	if db == nil {
		panic("prospects: sql db required")
	}
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (Prospect, error) {
	var p Prospect
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Relationship, &p.Source,
		&p.Status, &p.Priority, &p.CreatedAt, &p.LastContact, &p.NextAction,
		&p.NextActionType, &p.Notes, &p.HAScheduled, &p.HACompleted, &p.ClientStartDate)
	return p, err
}

// List returns every prospect in creation order.
func (r *PostgresRepository) List(ctx context.Context) ([]Prospect, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("prospects: list: %w", err)
	}
	defer rows.Close()

	out := []Prospect{}
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("prospects: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one prospect.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Prospect, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects WHERE id = $1`, id)
	p, err := scanProspect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Prospect{}, ErrProspectNotFound
	}
	if err != nil {
		return Prospect{}, fmt.Errorf("prospects: get: %w", err)
	}
	return p, nil
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, p Prospect) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prospects (`+prospectColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID, p.Name, p.Phone, p.Email, p.Relationship, p.Source,
		string(p.Status), string(p.Priority), p.CreatedAt, p.LastContact, p.NextAction,
		string(p.NextActionType), p.Notes, p.HAScheduled, p.HACompleted, p.ClientStartDate)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errDuplicateID
		}
		return fmt.Errorf("prospects: insert: %w", err)
	}
	return nil
}

// Update overwrites every mutable column. created_at is never rewritten.
func (r *PostgresRepository) Update(ctx context.Context, p Prospect) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE prospects SET
		    name=$2, phone=$3, email=$4, relationship=$5, source=$6, status=$7, priority=$8,
		    last_contact=$9, next_action=$10, next_action_type=$11, notes=$12,
		    ha_scheduled=$13, ha_completed=$14, client_start_date=$15, updated_at=now()
		WHERE id = $1`,
		p.ID, p.Name, p.Phone, p.Email, p.Relationship, p.Source,
		string(p.Status), string(p.Priority), p.LastContact, p.NextAction,
		string(p.NextActionType), p.Notes, p.HAScheduled, p.HACompleted, p.ClientStartDate)
	if err != nil {
		return fmt.Errorf("prospects: update: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a prospect. Timeline rows go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prospects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("prospects: delete: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("prospects: rows affected: %w", err)
	}
	if n == 0 {
		return ErrProspectNotFound
	}
	return nil
}
