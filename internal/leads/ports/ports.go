// Package ports defines the interfaces the lead domain requires from other
// modules. Implementations are wired in by the composition root so the lead
// module never imports the directory, projects, or pipeline packages.
package ports

import (
	"context"
	"errors"
	"time"

	"estate_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotAssignable means the id matched neither an active agent nor an
	// active channel partner.
	ErrNotAssignable = errors.New("assignee not found")
	// ErrUnknownProject means the supplied project id does not exist.
	ErrUnknownProject = errors.New("project not found")
	// ErrUnknownStatus means the status name is not in the live catalog.
	ErrUnknownStatus = errors.New("status not found")
)

// Directory resolves assignment targets against the people collections.
type Directory interface {
	// FindAssignableByID looks the id up among agents first, then channel
	// partners. Returns ErrNotAssignable when neither matches or the match
	// is deactivated.
	FindAssignableByID(ctx context.Context, id uuid.UUID) (domain.AssignableActor, error)

	// ListActiveAgents returns every agent eligible for a broadcast.
	ListActiveAgents(ctx context.Context) ([]domain.AssignableActor, error)
}

// ProjectResolver validates and labels project references carried in a
// lead's interest field.
type ProjectResolver interface {
	// TitleByID returns the project title, or ErrUnknownProject.
	TitleByID(ctx context.Context, id uuid.UUID) (string, error)
}

// StatusEntry is a live pipeline status as the lead domain sees it.
type StatusEntry struct {
	ID   uuid.UUID
	Name string
}

// StatusCatalog exposes the pipeline status catalog.
type StatusCatalog interface {
	// ResolveByName matches a status name case-insensitively against the
	// non-deleted catalog. Returns ErrUnknownStatus when absent.
	ResolveByName(ctx context.Context, name string) (StatusEntry, error)

	// ListNames returns all live status names, for breakdown keys.
	ListNames(ctx context.Context) ([]string, error)
}

// ReminderScheduler enqueues a follow-up reminder to fire at dueAt.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, followUpID uuid.UUID, dueAt time.Time) error
}
