package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestBroadcastInvariantHolds(t *testing.T) {
	agentID := uuid.New()

	tests := []struct {
		name string
		lead Lead
		want bool
	}{
		{
			name: "settled lead with assignee",
			lead: Lead{AssignedTo: &agentID},
			want: true,
		},
		{
			name: "live broadcast without assignee",
			lead: Lead{IsBroadcasted: true, BroadcastedTo: []uuid.UUID{agentID}},
			want: true,
		},
		{
			name: "broadcast with assignee is corrupt",
			lead: Lead{IsBroadcasted: true, AssignedTo: &agentID},
			want: false,
		},
		{
			name: "broadcast with acceptor is corrupt",
			lead: Lead{IsBroadcasted: true, LeadAcceptedBy: &agentID},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.lead.BroadcastInvariantHolds(); got != tt.want {
				t.Fatalf("BroadcastInvariantHolds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPendingCandidate(t *testing.T) {
	agentID := uuid.New()
	other := uuid.New()

	lead := Lead{IsBroadcasted: true, BroadcastedTo: []uuid.UUID{agentID}}
	if !lead.IsPendingCandidate(agentID) {
		t.Fatal("expected candidate to be pending")
	}
	if lead.IsPendingCandidate(other) {
		t.Fatal("non-candidate reported as pending")
	}

	// A candidate of a settled broadcast is no longer pending.
	lead.IsBroadcasted = false
	if lead.IsPendingCandidate(agentID) {
		t.Fatal("candidate of settled broadcast reported as pending")
	}
}

func TestVisibleToAgent(t *testing.T) {
	me := uuid.New()
	rival := uuid.New()

	t.Run("creator sees own settled lead", func(t *testing.T) {
		lead := Lead{CreatedByID: me}
		if !lead.VisibleToAgent(me) {
			t.Fatal("creator should see own lead")
		}
	})

	t.Run("unrelated lead is hidden", func(t *testing.T) {
		lead := Lead{CreatedByID: rival}
		if lead.VisibleToAgent(me) {
			t.Fatal("unrelated lead should be hidden")
		}
	})

	t.Run("own lead hidden while broadcast is live", func(t *testing.T) {
		lead := Lead{
			CreatedByID:   me,
			IsBroadcasted: true,
			BroadcastedTo: []uuid.UUID{rival},
		}
		if lead.VisibleToAgent(me) {
			t.Fatal("live broadcast should hide the lead from the regular list")
		}
	})

	t.Run("declined lead visible until someone else wins", func(t *testing.T) {
		lead := Lead{DeclinedBy: []uuid.UUID{me}}
		if !lead.VisibleToAgent(me) {
			t.Fatal("declined lead should stay visible")
		}

		lead.LeadAcceptedBy = &rival
		if lead.VisibleToAgent(me) {
			t.Fatal("lead taken by another agent should vanish")
		}
	})

	t.Run("accepted lead visible to the winner", func(t *testing.T) {
		lead := Lead{CreatedByID: me, LeadAcceptedBy: &me, AssignedTo: &me}
		if !lead.VisibleToAgent(me) {
			t.Fatal("winner should see their accepted lead")
		}
	})
}
