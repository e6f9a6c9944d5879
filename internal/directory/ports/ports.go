// Package ports defines what the directory module needs from other contexts.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// LeadSummary is the lead footprint shown on an agent's profile.
type LeadSummary struct {
	TotalLeads      int            `json:"totalLeads"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
	BroadcastWins   int            `json:"broadcastWins"`
}

// LeadStats supplies the per-agent lead summary. Implemented by an adapter
// over the lead module.
type LeadStats interface {
	AgentSummary(ctx context.Context, agentID uuid.UUID) (LeadSummary, error)
}
