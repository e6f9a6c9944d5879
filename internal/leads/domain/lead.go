package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange is one append-only entry in a lead's status history. The actor
// name and status name are point-in-time snapshots; renaming an actor or a
// catalog status later must not rewrite history.
type StatusChange struct {
	ActorID   uuid.UUID `json:"actorId"`
	ActorName string    `json:"actorName"`
	ActorRole Role      `json:"actorRole"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lead is the central entity: a prospective customer moving through the
// pipeline. Assignment and broadcast sub-state are mutually exclusive;
// see the invariant helpers below.
type Lead struct {
	ID uuid.UUID

	// Contact / profile
	Name            string
	Email           string
	PhoneNumber     string
	InterestedIn    string // project id (uuid text) or free-form interest
	Source          string
	Address         string
	PropertyType    string
	RequirementType string
	Budget          string
	Remark          string

	// Pipeline status (denormalized name + catalog reference)
	Status        string
	StatusRef     *uuid.UUID
	StatusHistory []StatusChange

	// Assignment
	AssignedTo     *uuid.UUID
	AssignedToKind *Kind
	AssignedToName *string

	// Creation provenance, immutable once set
	CreatedByRole Role
	CreatedByID   uuid.UUID
	CreatedByName string

	// Broadcast sub-state
	IsBroadcasted      bool
	BroadcastedTo      []uuid.UUID
	DeclinedBy         []uuid.UUID
	LeadAcceptedBy     *uuid.UUID
	LeadAcceptedByName *string
	AcceptedAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusNew is the sentinel status every lead starts in.
const StatusNew = "new"

// IsPendingCandidate reports whether the actor is still an undecided
// candidate of a live broadcast on this lead.
func (l *Lead) IsPendingCandidate(actorID uuid.UUID) bool {
	if !l.IsBroadcasted {
		return false
	}
	for _, id := range l.BroadcastedTo {
		if id == actorID {
			return true
		}
	}
	return false
}

// HasDeclined reports whether the actor previously opted out of a broadcast
// of this lead.
func (l *Lead) HasDeclined(actorID uuid.UUID) bool {
	for _, id := range l.DeclinedBy {
		if id == actorID {
			return true
		}
	}
	return false
}

// IsCreator reports whether the actor created this lead.
func (l *Lead) IsCreator(actorID uuid.UUID) bool {
	return l.CreatedByID == actorID
}

// IsAssignee reports whether the actor is the current single assignee.
func (l *Lead) IsAssignee(actorID uuid.UUID) bool {
	return l.AssignedTo != nil && *l.AssignedTo == actorID
}

// IsAcceptedBy reports whether the actor won the broadcast for this lead.
func (l *Lead) IsAcceptedBy(actorID uuid.UUID) bool {
	return l.LeadAcceptedBy != nil && *l.LeadAcceptedBy == actorID
}

// BroadcastInvariantHolds checks the core exclusivity rule: a live broadcast
// never coexists with a settled assignee or an acceptor.
func (l *Lead) BroadcastInvariantHolds() bool {
	if !l.IsBroadcasted {
		return true
	}
	return l.AssignedTo == nil && l.LeadAcceptedBy == nil
}

// VisibleToAgent implements the agent list rule: an agent sees leads they
// created, are assigned to, or declined, except a lead that is still
// broadcast (or was taken by someone else), unless they accepted it
// themselves. A pending candidate sees the lead only through the broadcast
// list, not the regular one.
func (l *Lead) VisibleToAgent(agentID uuid.UUID) bool {
	related := l.IsCreator(agentID) || l.IsAssignee(agentID) || l.HasDeclined(agentID)
	if !related {
		return false
	}
	if l.IsBroadcasted {
		return false
	}
	if l.LeadAcceptedBy != nil && !l.IsAcceptedBy(agentID) {
		return false
	}
	return true
}
