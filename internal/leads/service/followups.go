package service

import (
	"context"
	"time"

	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// CreateFollowUp attaches a personal reminder to a lead the actor may touch.
// When a date is supplied a reminder task is scheduled for that day.
func (s *Service) CreateFollowUp(ctx context.Context, actor domain.Actor, leadID uuid.UUID, req transport.CreateFollowUpRequest) (transport.FollowUpResponse, error) {
	policy := domain.PolicyFor(actor.Role)
	if policy == nil {
		return transport.FollowUpResponse{}, apperr.Forbidden("unknown role")
	}

	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return transport.FollowUpResponse{}, err
	}
	if err := policy.AuthorizeTransition(&lead, actor); err != nil {
		return transport.FollowUpResponse{}, err
	}

	var dueAt *time.Time
	if req.FollowUpDate != "" {
		parsed, err := time.Parse(transport.FollowUpDateLayout, req.FollowUpDate)
		if err != nil {
			return transport.FollowUpResponse{}, apperr.Validation("followUpDate must be DD/MM/YYYY")
		}
		dueAt = &parsed
	}

	followUp, err := s.store.CreateFollowUp(ctx, repository.CreateFollowUpParams{
		LeadID:  leadID,
		ActorID: actor.ID,
		Task:    req.Task,
		Notes:   req.Notes,
		DueAt:   dueAt,
	})
	if err != nil {
		return transport.FollowUpResponse{}, err
	}
	followUp.LeadName = lead.Name

	// Best-effort scheduling; the follow-up record itself is already saved.
	if dueAt != nil && dueAt.After(time.Now()) && s.scheduler != nil {
		if err := s.scheduler.ScheduleFollowUpReminder(ctx, followUp.ID, *dueAt); err != nil {
			s.log.NotifyError("followup_reminder", followUp.ID.String(), err)
		}
	}

	return transport.ToFollowUpResponse(followUp), nil
}

// ListFollowUps returns the actor's own follow-ups, soonest due first.
func (s *Service) ListFollowUps(ctx context.Context, actorID uuid.UUID) ([]transport.FollowUpResponse, error) {
	followUps, err := s.store.ListFollowUpsByActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.FollowUpResponse, 0, len(followUps))
	for _, followUp := range followUps {
		responses = append(responses, transport.ToFollowUpResponse(followUp))
	}
	return responses, nil
}

// FollowUpByID is used by the reminder worker to rehydrate a due follow-up.
func (s *Service) FollowUpByID(ctx context.Context, id uuid.UUID) (domain.FollowUp, error) {
	followUp, err := s.store.GetFollowUp(ctx, id)
	if err != nil {
		return domain.FollowUp{}, err
	}
	return followUp, nil
}
