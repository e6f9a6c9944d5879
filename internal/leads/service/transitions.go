package service

import (
	"context"
	"errors"
	"time"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/ports"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	actionAccept  = "accept"
	actionDecline = "decline"

	// broadcastTarget is the assignment sentinel that fans the lead out to
	// every active agent instead of settling it on one.
	broadcastTarget = "all"
)

// Transition applies one update to an existing lead. An accept/decline action
// stands alone; a status change and an assignment change may ride together,
// status applied first. All checks run before any write.
func (s *Service) Transition(ctx context.Context, actor domain.Actor, leadID uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	policy := domain.PolicyFor(actor.Role)
	if policy == nil {
		return transport.LeadResponse{}, apperr.Forbidden("unknown role")
	}

	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if err := policy.AuthorizeTransition(&lead, actor); err != nil {
		return transport.LeadResponse{}, err
	}

	// A pending broadcast candidate has exactly one move: answer the offer.
	// Routing on the lead's state here keeps a candidate from reaching the
	// status or assignment paths while the broadcast is live.
	if lead.IsPendingCandidate(actor.ID) || req.Action != nil {
		if req.Action == nil {
			return transport.LeadResponse{}, apperr.Validation("this lead is offered to you; respond with accept or decline")
		}
		if req.Status != nil || req.AssignedTo != nil {
			return transport.LeadResponse{}, apperr.Validation("accept/decline cannot be combined with other updates")
		}
		switch *req.Action {
		case actionAccept:
			return s.Accept(ctx, actor, leadID)
		case actionDecline:
			return s.Decline(ctx, actor, leadID)
		}
		return transport.LeadResponse{}, apperr.Validation("action must be accept or decline")
	}

	if req.Status == nil && req.AssignedTo == nil {
		return transport.LeadResponse{}, apperr.Validation("nothing to update")
	}

	if req.Status != nil {
		lead, err = s.applyStatus(ctx, actor, lead, *req.Status)
		if err != nil {
			return transport.LeadResponse{}, err
		}
	}

	if req.AssignedTo != nil {
		lead, err = s.applyAssignment(ctx, actor, lead, *req.AssignedTo)
		if err != nil {
			return transport.LeadResponse{}, err
		}
	}

	return transport.ToLeadResponse(lead, s.interestLabel(ctx, lead, map[uuid.UUID]string{})), nil
}

// applyStatus moves the lead to a live catalog status and appends exactly one
// history entry.
func (s *Service) applyStatus(ctx context.Context, actor domain.Actor, lead domain.Lead, statusName string) (domain.Lead, error) {
	entry, err := s.statuses.ResolveByName(ctx, statusName)
	if err != nil {
		if errors.Is(err, ports.ErrUnknownStatus) {
			return domain.Lead{}, apperr.Validation("unknown lead status: " + statusName)
		}
		return domain.Lead{}, err
	}

	change := domain.StatusChange{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Status:    entry.Name,
		UpdatedAt: time.Now().UTC(),
	}

	updated, err := s.store.AppendStatus(ctx, lead.ID, entry.Name, entry.ID, change)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}

	s.publish(ctx, events.LeadStatusChanged{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        updated.ID,
		LeadName:      updated.Name,
		Status:        entry.Name,
		ChangedByID:   actor.ID,
		ChangedByName: actor.Name,
		ChangedByRole: string(actor.Role),
	})

	return updated, nil
}

// applyAssignment either broadcasts the lead to all active agents ("all") or
// settles it on a single directory-resolved target. A direct assignment wipes
// broadcast and acceptance state but keeps the decline record.
func (s *Service) applyAssignment(ctx context.Context, actor domain.Actor, lead domain.Lead, target string) (domain.Lead, error) {
	if target == broadcastTarget {
		agents, err := s.directory.ListActiveAgents(ctx)
		if err != nil {
			return domain.Lead{}, err
		}
		if len(agents) == 0 {
			return domain.Lead{}, apperr.Validation("no active agents available to broadcast to")
		}

		candidates := make([]uuid.UUID, 0, len(agents))
		for _, agent := range agents {
			candidates = append(candidates, agent.ID)
		}

		updated, err := s.store.Broadcast(ctx, lead.ID, candidates)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Lead{}, apperr.NotFound("lead not found")
			}
			return domain.Lead{}, err
		}

		s.publish(ctx, events.LeadBroadcasted{
			BaseEvent:       events.NewBaseEvent(),
			LeadID:          updated.ID,
			LeadName:        updated.Name,
			CandidateIDs:    candidates,
			BroadcastByID:   actor.ID,
			BroadcastByName: actor.Name,
		})

		return updated, nil
	}

	assignee, err := s.lookupAssignable(ctx, target)
	if err != nil {
		return domain.Lead{}, err
	}

	updated, err := s.store.Assign(ctx, lead.ID, *assignee)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}

	s.publish(ctx, events.LeadAssigned{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         updated.ID,
		LeadName:       updated.Name,
		AssigneeID:     assignee.ID,
		AssigneeName:   assignee.Name,
		AssigneeKind:   string(assignee.Kind),
		AssignedByID:   actor.ID,
		AssignedByName: actor.Name,
	})

	return updated, nil
}

// Accept claims a broadcast lead for the calling agent. The claim itself is a
// single conditional write; losing the race is a conflict that names the
// winner, never an internal error.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if !lead.IsBroadcasted {
		if lead.IsAcceptedBy(actor.ID) {
			// Double accept after winning: nothing to do.
			return transport.ToLeadResponse(lead, s.interestLabel(ctx, lead, map[uuid.UUID]string{})), nil
		}
		if lead.LeadAcceptedBy == nil {
			// Never broadcast, or broadcast settled by direct assignment;
			// either way there is no claim for this agent to contest.
			return transport.LeadResponse{}, apperr.Forbidden("this lead was not offered to you")
		}
		return transport.LeadResponse{}, s.acceptConflict(ctx, leadID)
	}
	if !lead.IsPendingCandidate(actor.ID) {
		return transport.LeadResponse{}, apperr.Forbidden("this lead was not offered to you")
	}

	// Candidates other than the caller at claim time; used only for the
	// "lead taken" notification.
	losers := make([]uuid.UUID, 0, len(lead.BroadcastedTo))
	for _, id := range lead.BroadcastedTo {
		if id != actor.ID {
			losers = append(losers, id)
		}
	}

	updated, err := s.store.AcceptBroadcast(ctx, leadID, actor.ID, actor.Name)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyAccepted) {
			return transport.LeadResponse{}, s.acceptConflict(ctx, leadID)
		}
		return transport.LeadResponse{}, err
	}

	s.publish(ctx, events.LeadAccepted{
		BaseEvent:          events.NewBaseEvent(),
		LeadID:             updated.ID,
		LeadName:           updated.Name,
		AcceptedByID:       actor.ID,
		AcceptedByName:     actor.Name,
		LosingCandidateIDs: losers,
	})

	return transport.ToLeadResponse(updated, s.interestLabel(ctx, updated, map[uuid.UUID]string{})), nil
}

// acceptConflict re-reads the lead after a failed claim to report who won.
func (s *Service) acceptConflict(ctx context.Context, leadID uuid.UUID) error {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return err
	}
	winner := "another agent"
	if lead.LeadAcceptedByName != nil {
		winner = *lead.LeadAcceptedByName
	}
	return apperr.Conflict("lead already accepted by " + winner)
}

// Decline removes the calling agent from a broadcast. Declining a lead twice
// is a no-op, not an error.
func (s *Service) Decline(ctx context.Context, actor domain.Actor, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if lead.HasDeclined(actor.ID) {
		return transport.ToLeadResponse(lead, s.interestLabel(ctx, lead, map[uuid.UUID]string{})), nil
	}
	if !lead.IsPendingCandidate(actor.ID) {
		return transport.LeadResponse{}, apperr.Forbidden("this lead was not offered to you")
	}

	updated, err := s.store.DeclineBroadcast(ctx, leadID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	s.publish(ctx, events.LeadDeclined{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         updated.ID,
		LeadName:       updated.Name,
		DeclinedByID:   actor.ID,
		DeclinedByName: actor.Name,
	})

	return transport.ToLeadResponse(updated, s.interestLabel(ctx, updated, map[uuid.UUID]string{})), nil
}
