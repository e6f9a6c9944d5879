// Package adapters bridges bounded contexts: each adapter implements one
// module's port on top of another module's service, so the modules themselves
// never import each other. Wired in the composition root.
package adapters

import (
	"context"
	"errors"

	directoryports "estate_crm_backend/internal/directory/ports"
	directoryrepo "estate_crm_backend/internal/directory/repository"
	directorysvc "estate_crm_backend/internal/directory/service"
	"estate_crm_backend/internal/leads/domain"
	leadsports "estate_crm_backend/internal/leads/ports"
	leadssvc "estate_crm_backend/internal/leads/service"
	pipelinesvc "estate_crm_backend/internal/pipeline/service"
	projectsrepo "estate_crm_backend/internal/projects/repository"
	projectssvc "estate_crm_backend/internal/projects/service"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// DirectoryAdapter implements the lead module's Directory port over the
// directory service.
type DirectoryAdapter struct {
	svc *directorysvc.Service
}

func NewDirectoryAdapter(svc *directorysvc.Service) *DirectoryAdapter {
	return &DirectoryAdapter{svc: svc}
}

func (a *DirectoryAdapter) FindAssignableByID(ctx context.Context, id uuid.UUID) (domain.AssignableActor, error) {
	assignable, err := a.svc.FindAssignableByID(ctx, id)
	if err != nil {
		if errors.Is(err, directorysvc.ErrNotAssignable) {
			return domain.AssignableActor{}, leadsports.ErrNotAssignable
		}
		return domain.AssignableActor{}, err
	}
	return domain.AssignableActor{
		ID:   assignable.ID,
		Name: assignable.Name,
		Kind: domain.Kind(assignable.Kind),
	}, nil
}

func (a *DirectoryAdapter) ListActiveAgents(ctx context.Context) ([]domain.AssignableActor, error) {
	agents, err := a.svc.ListActiveAgents(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]domain.AssignableActor, 0, len(agents))
	for _, agent := range agents {
		pool = append(pool, domain.AssignableActor{
			ID:   agent.ID,
			Name: agent.Name,
			Kind: domain.Kind(agent.Kind),
		})
	}
	return pool, nil
}

// ProjectsAdapter implements the lead module's ProjectResolver port.
type ProjectsAdapter struct {
	svc *projectssvc.Service
}

func NewProjectsAdapter(svc *projectssvc.Service) *ProjectsAdapter {
	return &ProjectsAdapter{svc: svc}
}

func (a *ProjectsAdapter) TitleByID(ctx context.Context, id uuid.UUID) (string, error) {
	title, err := a.svc.TitleByID(ctx, id)
	if err != nil {
		if errors.Is(err, projectsrepo.ErrNotFound) {
			return "", leadsports.ErrUnknownProject
		}
		return "", err
	}
	return title, nil
}

// PipelineAdapter implements the lead module's StatusCatalog port.
type PipelineAdapter struct {
	svc *pipelinesvc.Service
}

func NewPipelineAdapter(svc *pipelinesvc.Service) *PipelineAdapter {
	return &PipelineAdapter{svc: svc}
}

func (a *PipelineAdapter) ResolveByName(ctx context.Context, name string) (leadsports.StatusEntry, error) {
	status, err := a.svc.ResolveByName(ctx, name)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return leadsports.StatusEntry{}, leadsports.ErrUnknownStatus
		}
		return leadsports.StatusEntry{}, err
	}
	return leadsports.StatusEntry{ID: status.ID, Name: status.Name}, nil
}

func (a *PipelineAdapter) ListNames(ctx context.Context) ([]string, error) {
	return a.svc.ListNames(ctx)
}

// LeadStatsAdapter implements the directory module's LeadStats port over the
// lead service.
type LeadStatsAdapter struct {
	svc *leadssvc.Service
}

func NewLeadStatsAdapter(svc *leadssvc.Service) *LeadStatsAdapter {
	return &LeadStatsAdapter{svc: svc}
}

func (a *LeadStatsAdapter) AgentSummary(ctx context.Context, agentID uuid.UUID) (directoryports.LeadSummary, error) {
	summary, err := a.svc.AgentSummary(ctx, agentID)
	if err != nil {
		return directoryports.LeadSummary{}, err
	}
	return directoryports.LeadSummary{
		TotalLeads:      summary.TotalLeads,
		StatusBreakdown: summary.StatusBreakdown,
		BroadcastWins:   summary.BroadcastWins,
	}, nil
}

// ActorContactAdapter implements the notification module's ActorReader over
// the directory repository.
type ActorContactAdapter struct {
	repo *directoryrepo.Repository
}

func NewActorContactAdapter(repo *directoryrepo.Repository) *ActorContactAdapter {
	return &ActorContactAdapter{repo: repo}
}

// ContactByID uses the same dual lookup as assignment resolution: agents
// first, then channel partners.
func (a *ActorContactAdapter) ContactByID(ctx context.Context, id uuid.UUID) (string, string, error) {
	agent, err := a.repo.GetAgentByID(ctx, id)
	if err == nil {
		return agent.Name, agent.Email, nil
	}
	if !errors.Is(err, directoryrepo.ErrNotFound) {
		return "", "", err
	}

	partner, err := a.repo.GetPartnerByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return partner.Name, partner.Email, nil
}
