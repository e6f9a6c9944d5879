// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"estate_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Lifecycle Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	LeadName      string     `json:"leadName"`
	CreatedByID   uuid.UUID  `json:"createdById"`
	CreatedByName string     `json:"createdByName"`
	CreatedByRole string     `json:"createdByRole"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	AssignedName  string     `json:"assignedName,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadAssigned is published when a lead is directly assigned to an actor.
type LeadAssigned struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	LeadName       string    `json:"leadName"`
	AssigneeID     uuid.UUID `json:"assigneeId"`
	AssigneeName   string    `json:"assigneeName"`
	AssigneeKind   string    `json:"assigneeKind"`
	AssignedByID   uuid.UUID `json:"assignedById"`
	AssignedByName string    `json:"assignedByName"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// LeadBroadcasted is published when a lead is offered to a pool of agents.
type LeadBroadcasted struct {
	BaseEvent
	LeadID          uuid.UUID   `json:"leadId"`
	LeadName        string      `json:"leadName"`
	CandidateIDs    []uuid.UUID `json:"candidateIds"`
	BroadcastByID   uuid.UUID   `json:"broadcastById"`
	BroadcastByName string      `json:"broadcastByName"`
}

func (e LeadBroadcasted) EventName() string { return "leads.broadcasted" }

// LeadAccepted is published when a broadcast lead is claimed by an agent.
// LosingCandidateIDs are the remaining candidates who must be told the lead
// was taken.
type LeadAccepted struct {
	BaseEvent
	LeadID             uuid.UUID   `json:"leadId"`
	LeadName           string      `json:"leadName"`
	AcceptedByID       uuid.UUID   `json:"acceptedById"`
	AcceptedByName     string      `json:"acceptedByName"`
	LosingCandidateIDs []uuid.UUID `json:"losingCandidateIds"`
}

func (e LeadAccepted) EventName() string { return "leads.accepted" }

// LeadDeclined is published when a broadcast candidate opts out.
type LeadDeclined struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	LeadName       string    `json:"leadName"`
	DeclinedByID   uuid.UUID `json:"declinedById"`
	DeclinedByName string    `json:"declinedByName"`
}

func (e LeadDeclined) EventName() string { return "leads.declined" }

// LeadStatusChanged is published when a lead moves to a new pipeline status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	LeadName      string    `json:"leadName"`
	Status        string    `json:"status"`
	ChangedByID   uuid.UUID `json:"changedById"`
	ChangedByName string    `json:"changedByName"`
	ChangedByRole string    `json:"changedByRole"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status_changed" }

// FollowUpDue is published by the scheduler worker when a follow-up reminder
// comes due.
type FollowUpDue struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadName string    `json:"leadName"`
	AgentID  uuid.UUID `json:"agentId"`
	Task     string    `json:"task"`
	Notes    string    `json:"notes,omitempty"`
}

func (e FollowUpDue) EventName() string { return "leads.followup.due" }
