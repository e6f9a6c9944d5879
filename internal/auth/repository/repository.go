// Package repository reads login credentials from the per-role collections.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("account not found")

// Credential is the minimal account view the login flow needs.
type Credential struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Active       bool
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByEmail looks the email up in the collection that backs the given role.
func (r *Repository) FindByEmail(ctx context.Context, role, email string) (Credential, error) {
	var query string
	switch role {
	case "admin":
		query = `SELECT id, name, email, password_hash, true FROM admins WHERE lower(email) = lower($1)`
	case "agent":
		query = `SELECT id, name, email, password_hash, active FROM agents WHERE lower(email) = lower($1)`
	case "channel_partner":
		query = `SELECT id, name, email, password_hash, active FROM channel_partners WHERE lower(email) = lower($1)`
	default:
		return Credential{}, ErrNotFound
	}

	var cred Credential
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&cred.ID, &cred.Name, &cred.Email, &cred.PasswordHash, &cred.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrNotFound
	}
	return cred, err
}

// MarkAgentSeen records an agent login timestamp.
func (r *Repository) MarkAgentSeen(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE agents SET last_seen = now() WHERE id = $1`, id)
	return err
}
