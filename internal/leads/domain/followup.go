package domain

import (
	"time"

	"github.com/google/uuid"
)

// FollowUp is a personal reminder an actor attaches to a lead. When DueAt is
// set, a reminder is scheduled for that moment.
type FollowUp struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	LeadName  string
	ActorID   uuid.UUID
	Task      string
	Notes     string
	DueAt     *time.Time
	CreatedAt time.Time
}
