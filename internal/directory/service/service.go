// Package service implements directory operations: onboarding agents and
// channel partners, assignment target resolution, and agent self-service.
package service

import (
	"context"
	"errors"
	"strings"

	"estate_crm_backend/internal/directory/ports"
	"estate_crm_backend/internal/directory/repository"
	"estate_crm_backend/internal/directory/transport"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Assignable is a resolved assignment target: an agent or a channel partner.
type Assignable struct {
	ID   uuid.UUID
	Name string
	Kind string // "agent" or "channel_partner"
}

// ErrNotAssignable means neither collection held an active match.
var ErrNotAssignable = errors.New("assignee not found")

type Service struct {
	repo      *repository.Repository
	leadStats ports.LeadStats
}

func New(repo *repository.Repository, leadStats ports.LeadStats) *Service {
	return &Service{repo: repo, leadStats: leadStats}
}

// SetLeadStats wires the lead summary source after construction; the lead
// module and the directory are built in dependency order at startup.
func (s *Service) SetLeadStats(leadStats ports.LeadStats) {
	s.leadStats = leadStats
}

func (s *Service) CreateAgent(ctx context.Context, req transport.CreateAgentRequest) (transport.AgentResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.AgentResponse{}, err
	}

	agent, err := s.repo.CreateAgent(ctx, repository.CreateAgentParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  phone.NormalizeE164(req.PhoneNumber),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.AgentResponse{}, apperr.Conflict("an agent with this email already exists")
		}
		return transport.AgentResponse{}, err
	}
	return toAgentResponse(agent), nil
}

func (s *Service) ListAgents(ctx context.Context) ([]transport.AgentResponse, error) {
	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.AgentResponse, 0, len(agents))
	for _, agent := range agents {
		responses = append(responses, toAgentResponse(agent))
	}
	return responses, nil
}

func (s *Service) GetAgent(ctx context.Context, id uuid.UUID) (transport.AgentResponse, error) {
	agent, err := s.repo.GetAgentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AgentResponse{}, apperr.NotFound("agent not found")
		}
		return transport.AgentResponse{}, err
	}
	return toAgentResponse(agent), nil
}

func (s *Service) SetAgentActive(ctx context.Context, id uuid.UUID, active bool) error {
	err := s.repo.SetAgentActive(ctx, id, active)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("agent not found")
	}
	return err
}

func (s *Service) CreatePartner(ctx context.Context, req transport.CreatePartnerRequest) (transport.PartnerResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	partner, err := s.repo.CreatePartner(ctx, repository.CreatePartnerParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  phone.NormalizeE164(req.PhoneNumber),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.PartnerResponse{}, apperr.Conflict("a channel partner with this email already exists")
		}
		return transport.PartnerResponse{}, err
	}
	return toPartnerResponse(partner), nil
}

func (s *Service) ListPartners(ctx context.Context) ([]transport.PartnerResponse, error) {
	partners, err := s.repo.ListPartners(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.PartnerResponse, 0, len(partners))
	for _, partner := range partners {
		responses = append(responses, toPartnerResponse(partner))
	}
	return responses, nil
}

func (s *Service) GetPartner(ctx context.Context, id uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetPartnerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.PartnerResponse{}, apperr.NotFound("channel partner not found")
		}
		return transport.PartnerResponse{}, err
	}
	return toPartnerResponse(partner), nil
}

func (s *Service) SetPartnerActive(ctx context.Context, id uuid.UUID, active bool) error {
	err := s.repo.SetPartnerActive(ctx, id, active)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("channel partner not found")
	}
	return err
}

// FindAssignableByID resolves an assignment target with the dual lookup:
// agents first, then channel partners. Deactivated people never match.
func (s *Service) FindAssignableByID(ctx context.Context, id uuid.UUID) (Assignable, error) {
	agent, err := s.repo.GetAgentByID(ctx, id)
	if err == nil {
		if !agent.Active {
			return Assignable{}, ErrNotAssignable
		}
		return Assignable{ID: agent.ID, Name: agent.Name, Kind: "agent"}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Assignable{}, err
	}

	partner, err := s.repo.GetPartnerByID(ctx, id)
	if err == nil {
		if !partner.Active {
			return Assignable{}, ErrNotAssignable
		}
		return Assignable{ID: partner.ID, Name: partner.Name, Kind: "channel_partner"}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Assignable{}, err
	}

	return Assignable{}, ErrNotAssignable
}

// ListActiveAgents returns the broadcast candidate pool.
func (s *Service) ListActiveAgents(ctx context.Context) ([]Assignable, error) {
	agents, err := s.repo.ListActiveAgents(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]Assignable, 0, len(agents))
	for _, agent := range agents {
		pool = append(pool, Assignable{ID: agent.ID, Name: agent.Name, Kind: "agent"})
	}
	return pool, nil
}

// Me returns an agent's own profile plus their lead footprint.
func (s *Service) Me(ctx context.Context, agentID uuid.UUID) (transport.MeResponse, error) {
	agent, err := s.repo.GetAgentByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.MeResponse{}, apperr.NotFound("agent not found")
		}
		return transport.MeResponse{}, err
	}

	resp := transport.MeResponse{Profile: toAgentResponse(agent)}
	if s.leadStats != nil {
		summary, err := s.leadStats.AgentSummary(ctx, agentID)
		if err != nil {
			return transport.MeResponse{}, err
		}
		resp.Leads = summary
	}
	return resp, nil
}

func (s *Service) CreateNote(ctx context.Context, agentID uuid.UUID, body string) (transport.NoteResponse, error) {
	note, err := s.repo.CreateNote(ctx, agentID, body)
	if err != nil {
		return transport.NoteResponse{}, err
	}
	return toNoteResponse(note), nil
}

func (s *Service) ListNotes(ctx context.Context, agentID uuid.UUID) ([]transport.NoteResponse, error) {
	notes, err := s.repo.ListNotes(ctx, agentID)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.NoteResponse, 0, len(notes))
	for _, note := range notes {
		responses = append(responses, toNoteResponse(note))
	}
	return responses, nil
}

func (s *Service) DeleteNote(ctx context.Context, agentID, noteID uuid.UUID) error {
	err := s.repo.DeleteNote(ctx, agentID, noteID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("note not found")
	}
	return err
}

func toAgentResponse(agent repository.Agent) transport.AgentResponse {
	return transport.AgentResponse{
		ID:          agent.ID.String(),
		Name:        agent.Name,
		Email:       agent.Email,
		PhoneNumber: agent.PhoneNumber,
		Active:      agent.Active,
		LastSeen:    agent.LastSeen,
		CreatedAt:   agent.CreatedAt,
	}
}

func toPartnerResponse(partner repository.ChannelPartner) transport.PartnerResponse {
	return transport.PartnerResponse{
		ID:          partner.ID.String(),
		Name:        partner.Name,
		Email:       partner.Email,
		PhoneNumber: partner.PhoneNumber,
		CompanyName: partner.CompanyName,
		Active:      partner.Active,
		CreatedAt:   partner.CreatedAt,
	}
}

func toNoteResponse(note repository.Note) transport.NoteResponse {
	return transport.NoteResponse{
		ID:        note.ID.String(),
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
	}
}
