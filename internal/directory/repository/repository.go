// Package repository persists the people directory: agents and channel
// partners, plus agents' personal notes.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type Agent struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Active       bool
	LastSeen     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ChannelPartner struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PhoneNumber  string
	CompanyName  string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Note struct {
	ID        uuid.UUID
	AgentID   uuid.UUID
	Body      string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const agentColumns = `id, name, email, phone_number, password_hash, active, last_seen, created_at, updated_at`
const partnerColumns = `id, name, email, phone_number, company_name, password_hash, active, created_at, updated_at`

type CreateAgentParams struct {
	Name         string
	Email        string
	PhoneNumber  string
	PasswordHash string
}

func (r *Repository) CreateAgent(ctx context.Context, params CreateAgentParams) (Agent, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO agents (name, email, phone_number, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+agentColumns,
		params.Name, params.Email, params.PhoneNumber, params.PasswordHash,
	)
	agent, err := scanAgent(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Agent{}, ErrDuplicateEmail
		}
		return Agent{}, err
	}
	return agent, nil
}

func (r *Repository) GetAgentByID(ctx context.Context, id uuid.UUID) (Agent, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	agent, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return agent, err
}

func (r *Repository) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

func (r *Repository) ListActiveAgents(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+agentColumns+` FROM agents WHERE active = true ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

func (r *Repository) SetAgentActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET active = $2, updated_at = now() WHERE id = $1`, id, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type CreatePartnerParams struct {
	Name         string
	Email        string
	PhoneNumber  string
	CompanyName  string
	PasswordHash string
}

func (r *Repository) CreatePartner(ctx context.Context, params CreatePartnerParams) (ChannelPartner, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO channel_partners (name, email, phone_number, company_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+partnerColumns,
		params.Name, params.Email, params.PhoneNumber, params.CompanyName, params.PasswordHash,
	)
	partner, err := scanPartner(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ChannelPartner{}, ErrDuplicateEmail
		}
		return ChannelPartner{}, err
	}
	return partner, nil
}

func (r *Repository) GetPartnerByID(ctx context.Context, id uuid.UUID) (ChannelPartner, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM channel_partners WHERE id = $1`, id)
	partner, err := scanPartner(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChannelPartner{}, ErrNotFound
	}
	return partner, err
}

func (r *Repository) ListPartners(ctx context.Context) ([]ChannelPartner, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partnerColumns+` FROM channel_partners ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := make([]ChannelPartner, 0)
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

func (r *Repository) SetPartnerActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE channel_partners SET active = $2, updated_at = now() WHERE id = $1`, id, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateNote(ctx context.Context, agentID uuid.UUID, body string) (Note, error) {
	var note Note
	err := r.pool.QueryRow(ctx, `
		INSERT INTO agent_notes (agent_id, body)
		VALUES ($1, $2)
		RETURNING id, agent_id, body, created_at`,
		agentID, body,
	).Scan(&note.ID, &note.AgentID, &note.Body, &note.CreatedAt)
	return note, err
}

func (r *Repository) ListNotes(ctx context.Context, agentID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, agent_id, body, created_at FROM agent_notes WHERE agent_id = $1 ORDER BY created_at DESC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.AgentID, &note.Body, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *Repository) DeleteNote(ctx context.Context, agentID, noteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM agent_notes WHERE id = $1 AND agent_id = $2`, noteID, agentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAgent(row pgx.Row) (Agent, error) {
	var agent Agent
	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Email, &agent.PhoneNumber,
		&agent.PasswordHash, &agent.Active, &agent.LastSeen, &agent.CreatedAt, &agent.UpdatedAt,
	)
	return agent, err
}

func scanPartner(row pgx.Row) (ChannelPartner, error) {
	var partner ChannelPartner
	err := row.Scan(
		&partner.ID, &partner.Name, &partner.Email, &partner.PhoneNumber, &partner.CompanyName,
		&partner.PasswordHash, &partner.Active, &partner.CreatedAt, &partner.UpdatedAt,
	)
	return partner, err
}
