// Package repository persists the pipeline status catalog.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("status not found")
	ErrDuplicateName = errors.New("status name already exists")
)

// Status is a pipeline status catalog entry. Soft-deleted entries stay in the
// table so historical status names keep resolving.
type Status struct {
	ID          uuid.UUID
	Name        string
	Description string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const statusColumns = `id, name, description, deleted, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, name, description string) (Status, error) {
	var status Status
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pipeline_statuses (name, description)
		VALUES ($1, $2)
		RETURNING `+statusColumns,
		strings.ToLower(strings.TrimSpace(name)), description,
	).Scan(&status.ID, &status.Name, &status.Description, &status.Deleted, &status.CreatedAt, &status.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Status{}, ErrDuplicateName
		}
		return Status{}, err
	}
	return status, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Status, error) {
	var status Status
	err := r.pool.QueryRow(ctx,
		`SELECT `+statusColumns+` FROM pipeline_statuses WHERE id = $1 AND deleted = false`, id,
	).Scan(&status.ID, &status.Name, &status.Description, &status.Deleted, &status.CreatedAt, &status.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Status{}, ErrNotFound
	}
	return status, err
}

func (r *Repository) GetByName(ctx context.Context, name string) (Status, error) {
	var status Status
	err := r.pool.QueryRow(ctx,
		`SELECT `+statusColumns+` FROM pipeline_statuses WHERE lower(name) = lower($1) AND deleted = false`,
		strings.TrimSpace(name),
	).Scan(&status.ID, &status.Name, &status.Description, &status.Deleted, &status.CreatedAt, &status.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Status{}, ErrNotFound
	}
	return status, err
}

func (r *Repository) ListAll(ctx context.Context) ([]Status, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+statusColumns+` FROM pipeline_statuses WHERE deleted = false ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]Status, 0)
	for rows.Next() {
		var status Status
		if err := rows.Scan(&status.ID, &status.Name, &status.Description, &status.Deleted, &status.CreatedAt, &status.UpdatedAt); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pipeline_statuses SET deleted = true, updated_at = now() WHERE id = $1 AND deleted = false`, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
