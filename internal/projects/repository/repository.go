// Package repository persists real-estate projects.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("project not found")

type Project struct {
	ID          uuid.UUID
	Title       string
	Description string
	Location    string
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

const projectColumns = `id, title, description, location, deleted, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, title, description, location string) (Project, error) {
	var project Project
	err := r.pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, location)
		VALUES ($1, $2, $3)
		RETURNING `+projectColumns,
		title, description, location,
	).Scan(&project.ID, &project.Title, &project.Description, &project.Location, &project.Deleted, &project.CreatedAt, &project.UpdatedAt)
	return project, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Project, error) {
	var project Project
	err := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND deleted = false`, id,
	).Scan(&project.ID, &project.Title, &project.Description, &project.Location, &project.Deleted, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return project, err
}

func (r *Repository) ListAll(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE deleted = false ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.Title, &project.Description, &project.Location, &project.Deleted, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET deleted = true, updated_at = now() WHERE id = $1 AND deleted = false`, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
