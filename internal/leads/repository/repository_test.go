package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// The acceptance race is decided entirely by this query's WHERE clause; these
// guards keep the conditions from being refactored away.
func TestAcceptBroadcastQueryGuards(t *testing.T) {
	guards := []string{
		"lead_accepted_by IS NULL",
		"is_broadcasted = true",
		"$2 = ANY(broadcasted_to)",
	}
	for _, guard := range guards {
		if !strings.Contains(acceptBroadcastQuery, guard) {
			t.Fatalf("accept query lost its guard %q", guard)
		}
	}

	if !strings.Contains(acceptBroadcastQuery, "RETURNING") {
		t.Fatal("accept query must return the updated row")
	}
	if !strings.Contains(acceptBroadcastQuery, "broadcasted_to = '{}'") {
		t.Fatal("accepting must clear the candidate pool")
	}
}

func TestDeclineBroadcastQueryIsIdempotent(t *testing.T) {
	if !strings.Contains(declineBroadcastQuery, "CASE WHEN $2 = ANY(declined_by)") {
		t.Fatal("decline query must not append duplicate decline entries")
	}
	if !strings.Contains(declineBroadcastQuery, "array_remove(broadcasted_to, $2)") {
		t.Fatal("decline query must drop the agent from the candidate pool")
	}
}

func TestBuildListQueryScopes(t *testing.T) {
	actorID := uuid.New()

	t.Run("unrestricted", func(t *testing.T) {
		query, args := buildListQuery(ListFilter{All: true})
		if strings.Contains(query, "WHERE") {
			t.Fatalf("unrestricted list should have no WHERE clause: %s", query)
		}
		if len(args) != 0 {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("actor relation", func(t *testing.T) {
		query, args := buildListQuery(ListFilter{ActorID: actorID})
		if !strings.Contains(query, "created_by_id = $1") || !strings.Contains(query, "assigned_to = $1") {
			t.Fatalf("relation filter missing: %s", query)
		}
		if strings.Contains(query, "ANY(declined_by)") {
			t.Fatal("declined relation should be off by default")
		}
		if len(args) != 1 || args[0] != actorID {
			t.Fatalf("unexpected args: %v", args)
		}
	})

	t.Run("declined included for agents", func(t *testing.T) {
		query, _ := buildListQuery(ListFilter{ActorID: actorID, IncludeDeclined: true})
		if !strings.Contains(query, "$1 = ANY(declined_by)") {
			t.Fatalf("declined relation missing: %s", query)
		}
	})

	t.Run("status and search combine", func(t *testing.T) {
		query, args := buildListQuery(ListFilter{ActorID: actorID, Status: "Visit", Search: "rahul"})
		if !strings.Contains(query, "status = $2") {
			t.Fatalf("status filter missing: %s", query)
		}
		if !strings.Contains(query, "name ILIKE $3") || !strings.Contains(query, "assigned_to_name ILIKE $3") {
			t.Fatalf("search filter missing: %s", query)
		}
		if args[1] != "visit" {
			t.Fatalf("status should be lowercased, got %v", args[1])
		}
		if args[2] != "%rahul%" {
			t.Fatalf("search should be wrapped in wildcards, got %v", args[2])
		}
	})

	t.Run("ordered newest first", func(t *testing.T) {
		query, _ := buildListQuery(ListFilter{All: true})
		if !strings.HasSuffix(query, "ORDER BY created_at DESC") {
			t.Fatalf("missing stable ordering: %s", query)
		}
	})
}
