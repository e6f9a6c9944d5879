package domain

import (
	"estate_crm_backend/platform/apperr"
)

// AssignmentMode tells the create operation how to resolve the assignee for
// a given caller role.
type AssignmentMode int

const (
	// AssignSelf ignores any caller-supplied target and assigns the creator.
	AssignSelf AssignmentMode = iota
	// AssignRequired demands a caller-supplied target resolved via dual lookup.
	AssignRequired
	// AssignOptional resolves a target when supplied, otherwise leaves the
	// lead unassigned.
	AssignOptional
)

// QueryScope describes which leads a role may list. The repository translates
// it into SQL; the agent broadcast-visibility rule is applied on top via
// Lead.VisibleToAgent.
type QueryScope struct {
	// All grants unrestricted visibility (admin).
	All bool
	// IncludeDeclined widens the relation filter to leads the actor declined
	// (agents keep declined leads in their list until someone else accepts).
	IncludeDeclined bool
	// HideForeignBroadcasts removes live broadcasts and leads accepted by
	// other agents (agent rule).
	HideForeignBroadcasts bool
}

// RolePolicy is the per-role capability set: one authorization gate for
// transitions, one query scope for lists, one assignment mode for create.
// It replaces scattered role if/else chains with a closed polymorphic
// dispatch selected once at operation entry.
type RolePolicy interface {
	// Role returns the role this policy covers.
	Role() Role
	// AuthorizeTransition gates every update on an existing lead, before any
	// state is mutated.
	AuthorizeTransition(lead *Lead, actor Actor) error
	// Scope returns the list-query visibility for this role.
	Scope() QueryScope
	// CreateAssignment returns how create resolves the assignee.
	CreateAssignment() AssignmentMode
}

// PolicyFor selects the policy for a role. Unknown roles get nil.
func PolicyFor(role Role) RolePolicy {
	switch role {
	case RoleAdmin:
		return adminPolicy{}
	case RoleAgent:
		return agentPolicy{}
	case RoleChannelPartner:
		return partnerPolicy{}
	}
	return nil
}

const msgNotYourLead = "this lead is not yours"

type adminPolicy struct{}

func (adminPolicy) Role() Role { return RoleAdmin }

func (adminPolicy) AuthorizeTransition(*Lead, Actor) error { return nil }

func (adminPolicy) Scope() QueryScope { return QueryScope{All: true} }

func (adminPolicy) CreateAssignment() AssignmentMode { return AssignOptional }

type agentPolicy struct{}

func (agentPolicy) Role() Role { return RoleAgent }

// AuthorizeTransition admits the creator, the current assignee, and any
// still-pending broadcast candidate (who needs access to accept or decline).
func (agentPolicy) AuthorizeTransition(lead *Lead, actor Actor) error {
	if lead.IsCreator(actor.ID) || lead.IsAssignee(actor.ID) || lead.IsPendingCandidate(actor.ID) {
		return nil
	}
	return apperr.Forbidden(msgNotYourLead)
}

func (agentPolicy) Scope() QueryScope {
	return QueryScope{IncludeDeclined: true, HideForeignBroadcasts: true}
}

func (agentPolicy) CreateAssignment() AssignmentMode { return AssignSelf }

type partnerPolicy struct{}

func (partnerPolicy) Role() Role { return RoleChannelPartner }

func (partnerPolicy) AuthorizeTransition(lead *Lead, actor Actor) error {
	if lead.IsCreator(actor.ID) || lead.IsAssignee(actor.ID) {
		return nil
	}
	return apperr.Forbidden(msgNotYourLead)
}

func (partnerPolicy) Scope() QueryScope { return QueryScope{} }

func (partnerPolicy) CreateAssignment() AssignmentMode { return AssignRequired }
