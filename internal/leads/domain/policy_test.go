package domain

import (
	"testing"

	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestPolicyForUnknownRole(t *testing.T) {
	if PolicyFor(Role("superuser")) != nil {
		t.Fatal("unknown role should have no policy")
	}
}

func TestAdminPolicyAllowsAnyTransition(t *testing.T) {
	lead := Lead{CreatedByID: uuid.New()}
	actor := Actor{ID: uuid.New(), Role: RoleAdmin}

	if err := PolicyFor(RoleAdmin).AuthorizeTransition(&lead, actor); err != nil {
		t.Fatalf("admin transition denied: %v", err)
	}
	if !PolicyFor(RoleAdmin).Scope().All {
		t.Fatal("admin scope should be unrestricted")
	}
}

func TestAgentPolicyTransitionGate(t *testing.T) {
	me := uuid.New()
	actor := Actor{ID: me, Role: RoleAgent}
	policy := PolicyFor(RoleAgent)

	t.Run("creator allowed", func(t *testing.T) {
		lead := Lead{CreatedByID: me}
		if err := policy.AuthorizeTransition(&lead, actor); err != nil {
			t.Fatalf("creator denied: %v", err)
		}
	})

	t.Run("assignee allowed", func(t *testing.T) {
		lead := Lead{AssignedTo: &me}
		if err := policy.AuthorizeTransition(&lead, actor); err != nil {
			t.Fatalf("assignee denied: %v", err)
		}
	})

	t.Run("pending candidate allowed", func(t *testing.T) {
		lead := Lead{IsBroadcasted: true, BroadcastedTo: []uuid.UUID{me}}
		if err := policy.AuthorizeTransition(&lead, actor); err != nil {
			t.Fatalf("pending candidate denied: %v", err)
		}
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		lead := Lead{CreatedByID: uuid.New()}
		err := policy.AuthorizeTransition(&lead, actor)
		if !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}

func TestPartnerPolicyTransitionGate(t *testing.T) {
	me := uuid.New()
	actor := Actor{ID: me, Role: RoleChannelPartner}
	policy := PolicyFor(RoleChannelPartner)

	lead := Lead{CreatedByID: me}
	if err := policy.AuthorizeTransition(&lead, actor); err != nil {
		t.Fatalf("creator denied: %v", err)
	}

	// Unlike agents, a partner named in a broadcast pool gets nothing: the
	// pool only ever holds agents.
	foreign := Lead{IsBroadcasted: true, BroadcastedTo: []uuid.UUID{me}}
	if err := policy.AuthorizeTransition(&foreign, actor); err == nil {
		t.Fatal("partner should not pass the gate via broadcast membership")
	}
}

func TestCreateAssignmentModes(t *testing.T) {
	if PolicyFor(RoleAgent).CreateAssignment() != AssignSelf {
		t.Fatal("agents must self-assign")
	}
	if PolicyFor(RoleChannelPartner).CreateAssignment() != AssignRequired {
		t.Fatal("partners must name a target")
	}
	if PolicyFor(RoleAdmin).CreateAssignment() != AssignOptional {
		t.Fatal("admin assignment should be optional")
	}
}
