package repository

import (
	"context"
	"errors"
	"time"

	"estate_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateFollowUpParams struct {
	LeadID  uuid.UUID
	ActorID uuid.UUID
	Task    string
	Notes   string
	DueAt   *time.Time
}

func (r *Repository) CreateFollowUp(ctx context.Context, params CreateFollowUpParams) (domain.FollowUp, error) {
	var followUp domain.FollowUp
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_follow_ups (lead_id, actor_id, task, notes, due_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, actor_id, task, notes, due_at, created_at`,
		params.LeadID, params.ActorID, params.Task, params.Notes, params.DueAt,
	).Scan(
		&followUp.ID, &followUp.LeadID, &followUp.ActorID,
		&followUp.Task, &followUp.Notes, &followUp.DueAt, &followUp.CreatedAt,
	)
	if err != nil {
		return domain.FollowUp{}, err
	}
	return followUp, nil
}

func (r *Repository) GetFollowUp(ctx context.Context, id uuid.UUID) (domain.FollowUp, error) {
	var followUp domain.FollowUp
	err := r.pool.QueryRow(ctx, `
		SELECT f.id, f.lead_id, l.name, f.actor_id, f.task, f.notes, f.due_at, f.created_at
		FROM lead_follow_ups f
		JOIN leads l ON l.id = f.lead_id
		WHERE f.id = $1`,
		id,
	).Scan(
		&followUp.ID, &followUp.LeadID, &followUp.LeadName, &followUp.ActorID,
		&followUp.Task, &followUp.Notes, &followUp.DueAt, &followUp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FollowUp{}, ErrNotFound
	}
	if err != nil {
		return domain.FollowUp{}, err
	}
	return followUp, nil
}

func (r *Repository) ListFollowUpsByActor(ctx context.Context, actorID uuid.UUID) ([]domain.FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.lead_id, l.name, f.actor_id, f.task, f.notes, f.due_at, f.created_at
		FROM lead_follow_ups f
		JOIN leads l ON l.id = f.lead_id
		WHERE f.actor_id = $1
		ORDER BY f.due_at NULLS LAST, f.created_at DESC`,
		actorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followUps := make([]domain.FollowUp, 0)
	for rows.Next() {
		var followUp domain.FollowUp
		if err := rows.Scan(
			&followUp.ID, &followUp.LeadID, &followUp.LeadName, &followUp.ActorID,
			&followUp.Task, &followUp.Notes, &followUp.DueAt, &followUp.CreatedAt,
		); err != nil {
			return nil, err
		}
		followUps = append(followUps, followUp)
	}

	return followUps, rows.Err()
}
