// Package domain holds the lead lifecycle entities and the role policies
// that gate every transition. It has no persistence or transport concerns.
package domain

import (
	"github.com/google/uuid"
)

// Role is the closed set of authenticated actor roles.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleAgent          Role = "agent"
	RoleChannelPartner Role = "channel_partner"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleChannelPartner:
		return true
	}
	return false
}

// ParseRole converts a raw role string to a Role. ok is false for any role
// outside the closed set.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.Valid()
}

// Kind identifies which directory collection an assignee belongs to.
type Kind string

const (
	KindAgent          Kind = "agent"
	KindChannelPartner Kind = "channel_partner"
)

// Actor is the authenticated caller of a lead operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// AssignableActor is the result of resolving an arbitrary id against the
// directory: an agent or a channel partner, whichever matched.
type AssignableActor struct {
	ID   uuid.UUID
	Name string
	Kind Kind
}
