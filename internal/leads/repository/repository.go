// Package repository is the durable lead store. It is the only writer of lead
// rows; all mutations happen through the service layer above it.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"estate_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicateEmail = errors.New("lead email already exists")
	// ErrAlreadyAccepted is returned when the conditional acceptance update
	// matched no row because another agent already claimed the lead.
	ErrAlreadyAccepted = errors.New("lead already accepted")
)

const leadColumns = `id, name, email, phone_number, interested_in, source, address,
	property_type, requirement_type, budget, remark,
	status, status_ref, status_history,
	assigned_to, assigned_to_kind, assigned_to_name,
	created_by_role, created_by_id, created_by_name,
	is_broadcasted, broadcasted_to, declined_by,
	lead_accepted_by, lead_accepted_by_name, accepted_at,
	created_at, updated_at`

// acceptBroadcastQuery is the single point where the broadcast-acceptance race
// is decided. The WHERE clause must keep the "lead_accepted_by IS NULL" guard:
// two concurrent accepts then resolve to exactly one matched row.
const acceptBroadcastQuery = `
	UPDATE leads SET
		lead_accepted_by = $2,
		lead_accepted_by_name = $3,
		accepted_at = now(),
		assigned_to = $2,
		assigned_to_kind = 'agent',
		assigned_to_name = $3,
		is_broadcasted = false,
		broadcasted_to = '{}',
		updated_at = now()
	WHERE id = $1
	  AND is_broadcasted = true
	  AND $2 = ANY(broadcasted_to)
	  AND lead_accepted_by IS NULL
	RETURNING ` + leadColumns

const declineBroadcastQuery = `
	UPDATE leads SET
		declined_by = CASE WHEN $2 = ANY(declined_by) THEN declined_by ELSE array_append(declined_by, $2) END,
		broadcasted_to = array_remove(broadcasted_to, $2),
		updated_at = now()
	WHERE id = $1
	RETURNING ` + leadColumns

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateLeadParams struct {
	Name            string
	Email           string
	PhoneNumber     string
	InterestedIn    string
	Source          string
	Address         string
	PropertyType    string
	RequirementType string
	Budget          string
	Remark          string
	Status          string
	AssignedTo      *uuid.UUID
	AssignedToKind  *domain.Kind
	AssignedToName  *string
	CreatedByRole   domain.Role
	CreatedByID     uuid.UUID
	CreatedByName   string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			name, email, phone_number, interested_in, source, address,
			property_type, requirement_type, budget, remark, status,
			assigned_to, assigned_to_kind, assigned_to_name,
			created_by_role, created_by_id, created_by_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+leadColumns,
		params.Name, params.Email, params.PhoneNumber, params.InterestedIn, params.Source, params.Address,
		params.PropertyType, params.RequirementType, params.Budget, params.Remark, params.Status,
		params.AssignedTo, params.AssignedToKind, params.AssignedToName,
		params.CreatedByRole, params.CreatedByID, params.CreatedByName,
	)

	lead, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Lead{}, ErrDuplicateEmail
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE lower(email) = lower($1))`, email,
	).Scan(&exists)
	return exists, err
}

// ListFilter narrows the lead list per the caller's query scope plus optional
// free-text search and status filter.
type ListFilter struct {
	// ActorID restricts to leads related to this actor (creator, assignee,
	// and optionally decliner). Zero value with All=false matches nothing.
	ActorID         uuid.UUID
	All             bool
	IncludeDeclined bool
	Search          string
	Status          string
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func buildListQuery(filter ListFilter) (string, []interface{}) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if !filter.All {
		args = append(args, filter.ActorID)
		placeholder := fmt.Sprintf("$%d", len(args))
		relation := fmt.Sprintf("(created_by_id = %s OR assigned_to = %s", placeholder, placeholder)
		if filter.IncludeDeclined {
			relation += fmt.Sprintf(" OR %s = ANY(declined_by)", placeholder)
		}
		relation += ")"
		conditions = append(conditions, relation)
	}

	if filter.Status != "" {
		args = append(args, strings.ToLower(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		fields := []string{
			"name", "email", "phone_number", "interested_in", "source", "address",
			"property_type", "requirement_type", "budget", "remark",
			"assigned_to_name", "created_by_name",
		}
		searchParts := make([]string, 0, len(fields))
		for _, field := range fields {
			searchParts = append(searchParts, fmt.Sprintf("%s ILIKE %s", field, placeholder))
		}
		conditions = append(conditions, "("+strings.Join(searchParts, " OR ")+")")
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return query, args
}

// AppendStatus sets the denormalized status name and catalog reference, and
// appends exactly one history entry in the same statement so concurrent
// updates never lose entries.
func (r *Repository) AppendStatus(ctx context.Context, leadID uuid.UUID, statusName string, statusRef uuid.UUID, entry domain.StatusChange) (domain.Lead, error) {
	entryJSON, err := json.Marshal([]domain.StatusChange{entry})
	if err != nil {
		return domain.Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			status = $2,
			status_ref = $3,
			status_history = status_history || $4::jsonb,
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		leadID, statusName, statusRef, entryJSON,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// Assign settles the lead on a single assignee. Broadcast and acceptance
// fields are cleared; declined_by is deliberately preserved across
// reassignments.
func (r *Repository) Assign(ctx context.Context, leadID uuid.UUID, assignee domain.AssignableActor) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			assigned_to = $2,
			assigned_to_kind = $3,
			assigned_to_name = $4,
			is_broadcasted = false,
			broadcasted_to = '{}',
			lead_accepted_by = NULL,
			lead_accepted_by_name = NULL,
			accepted_at = NULL,
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		leadID, assignee.ID, assignee.Kind, assignee.Name,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// Broadcast offers the lead to the candidate pool, clearing any settled
// assignment or prior acceptance. declined_by accumulates across rounds.
func (r *Repository) Broadcast(ctx context.Context, leadID uuid.UUID, candidates []uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			is_broadcasted = true,
			broadcasted_to = $2,
			assigned_to = NULL,
			assigned_to_kind = NULL,
			assigned_to_name = NULL,
			lead_accepted_by = NULL,
			lead_accepted_by_name = NULL,
			accepted_at = NULL,
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		leadID, candidates,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// AcceptBroadcast performs the first-writer-wins claim as a single conditional
// update. When no row matches, the lead either does not exist, is not
// broadcast to this agent, or was already accepted; callers distinguish via
// ErrAlreadyAccepted vs ErrNotFound by re-reading.
func (r *Repository) AcceptBroadcast(ctx context.Context, leadID, agentID uuid.UUID, agentName string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, acceptBroadcastQuery, leadID, agentID, agentName)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrAlreadyAccepted
	}
	return lead, err
}

// DeclineBroadcast removes the agent from the candidate pool and records the
// decline. Declining twice is a no-op on declined_by.
func (r *Repository) DeclineBroadcast(ctx context.Context, leadID, agentID uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, declineBroadcastQuery, leadID, agentID)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) ListBroadcasted(ctx context.Context, limit, offset int) ([]domain.Lead, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM leads WHERE is_broadcasted = true`,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE is_broadcasted = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	return leads, total, rows.Err()
}

// CountAcceptedBy counts settled broadcast wins for an agent's profile summary.
func (r *Repository) CountAcceptedBy(ctx context.Context, agentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM leads WHERE is_broadcasted = false AND lead_accepted_by = $1`,
		agentID,
	).Scan(&count)
	return count, err
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead        domain.Lead
		historyJSON []byte
	)

	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.PhoneNumber, &lead.InterestedIn, &lead.Source, &lead.Address,
		&lead.PropertyType, &lead.RequirementType, &lead.Budget, &lead.Remark,
		&lead.Status, &lead.StatusRef, &historyJSON,
		&lead.AssignedTo, &lead.AssignedToKind, &lead.AssignedToName,
		&lead.CreatedByRole, &lead.CreatedByID, &lead.CreatedByName,
		&lead.IsBroadcasted, &lead.BroadcastedTo, &lead.DeclinedBy,
		&lead.LeadAcceptedBy, &lead.LeadAcceptedByName, &lead.AcceptedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &lead.StatusHistory); err != nil {
			return domain.Lead{}, err
		}
	}

	return lead, nil
}
