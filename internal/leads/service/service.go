// Package service implements the lead lifecycle operations: create with
// role-dependent assignment, guarded transitions, the broadcast claim race,
// and role-scoped queries.
package service

import (
	"context"
	"errors"
	"strings"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/ports"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/phone"

	"github.com/google/uuid"
)

const minFreeTextInterest = 3

// Store is the persistence contract the service needs. The pgx repository
// satisfies it; tests substitute a fake.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter repository.ListFilter) ([]domain.Lead, error)
	AppendStatus(ctx context.Context, leadID uuid.UUID, statusName string, statusRef uuid.UUID, entry domain.StatusChange) (domain.Lead, error)
	Assign(ctx context.Context, leadID uuid.UUID, assignee domain.AssignableActor) (domain.Lead, error)
	Broadcast(ctx context.Context, leadID uuid.UUID, candidates []uuid.UUID) (domain.Lead, error)
	AcceptBroadcast(ctx context.Context, leadID, agentID uuid.UUID, agentName string) (domain.Lead, error)
	DeclineBroadcast(ctx context.Context, leadID, agentID uuid.UUID) (domain.Lead, error)
	ListBroadcasted(ctx context.Context, limit, offset int) ([]domain.Lead, int, error)
	CountAcceptedBy(ctx context.Context, agentID uuid.UUID) (int, error)
	CreateFollowUp(ctx context.Context, params repository.CreateFollowUpParams) (domain.FollowUp, error)
	GetFollowUp(ctx context.Context, id uuid.UUID) (domain.FollowUp, error)
	ListFollowUpsByActor(ctx context.Context, actorID uuid.UUID) ([]domain.FollowUp, error)
}

type Service struct {
	store     Store
	directory ports.Directory
	projects  ports.ProjectResolver
	statuses  ports.StatusCatalog
	scheduler ports.ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
}

func New(
	store Store,
	directory ports.Directory,
	projects ports.ProjectResolver,
	statuses ports.StatusCatalog,
	scheduler ports.ReminderScheduler,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		directory: directory,
		projects:  projects,
		statuses:  statuses,
		scheduler: scheduler,
		bus:       bus,
		log:       log,
	}
}

// Create registers a new lead for the given actor. Assignment is resolved per
// the actor's role: agents always get the lead themselves, channel partners
// must name a target, admins may leave it open.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	policy := domain.PolicyFor(actor.Role)
	if policy == nil {
		return transport.LeadResponse{}, apperr.Forbidden("unknown role")
	}

	exists, err := s.store.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if exists {
		return transport.LeadResponse{}, apperr.Conflict("a lead with this email already exists")
	}

	interestLabel, err := s.resolveInterest(ctx, req.InterestedIn)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	params := repository.CreateLeadParams{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:     phone.NormalizeE164(req.PhoneNumber),
		InterestedIn:    strings.TrimSpace(req.InterestedIn),
		Source:          req.Source,
		Address:         req.Address,
		PropertyType:    req.PropertyType,
		RequirementType: req.RequirementType,
		Budget:          req.Budget,
		Remark:          req.Remark,
		Status:          domain.StatusNew,
		CreatedByRole:   actor.Role,
		CreatedByID:     actor.ID,
		CreatedByName:   actor.Name,
	}

	assignee, err := s.resolveCreateAssignee(ctx, policy, actor, req.AssignedTo)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if assignee != nil {
		params.AssignedTo = &assignee.ID
		params.AssignedToKind = &assignee.Kind
		params.AssignedToName = &assignee.Name
	}

	lead, err := s.store.Create(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.LeadResponse{}, apperr.Conflict("a lead with this email already exists")
		}
		return transport.LeadResponse{}, err
	}

	created := events.LeadCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		CreatedByID:   actor.ID,
		CreatedByName: actor.Name,
		CreatedByRole: string(actor.Role),
	}
	if assignee != nil {
		created.AssignedTo = &assignee.ID
		created.AssignedName = assignee.Name
	}
	s.publish(ctx, created)

	// An assignment to someone other than the creator also notifies the
	// assignee directly.
	if assignee != nil && assignee.ID != actor.ID {
		s.publish(ctx, events.LeadAssigned{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         lead.ID,
			LeadName:       lead.Name,
			AssigneeID:     assignee.ID,
			AssigneeName:   assignee.Name,
			AssigneeKind:   string(assignee.Kind),
			AssignedByID:   actor.ID,
			AssignedByName: actor.Name,
		})
	}

	return transport.ToLeadResponse(lead, interestLabel), nil
}

// resolveInterest validates the tagged-union interest field. A uuid must
// reference an existing project; anything else is free text with a minimum
// length. Returns the display label.
func (s *Service) resolveInterest(ctx context.Context, interest string) (string, error) {
	interest = strings.TrimSpace(interest)

	if projectID, err := uuid.Parse(interest); err == nil {
		title, err := s.projects.TitleByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, ports.ErrUnknownProject) {
				return "", apperr.Validation("interestedIn references an unknown project")
			}
			return "", err
		}
		return title, nil
	}

	if len(interest) < minFreeTextInterest {
		return "", apperr.Validation("interestedIn must be a project id or at least 3 characters")
	}
	return interest, nil
}

func (s *Service) resolveCreateAssignee(ctx context.Context, policy domain.RolePolicy, actor domain.Actor, target string) (*domain.AssignableActor, error) {
	switch policy.CreateAssignment() {
	case domain.AssignSelf:
		// Any caller-supplied target is dropped.
		return &domain.AssignableActor{ID: actor.ID, Name: actor.Name, Kind: domain.KindAgent}, nil

	case domain.AssignRequired:
		if target == "" {
			return nil, apperr.Validation("assignedTo is required")
		}
		return s.lookupAssignable(ctx, target)

	case domain.AssignOptional:
		if target == "" {
			return nil, nil
		}
		return s.lookupAssignable(ctx, target)
	}
	return nil, apperr.Internal("unhandled assignment mode")
}

func (s *Service) lookupAssignable(ctx context.Context, target string) (*domain.AssignableActor, error) {
	targetID, err := uuid.Parse(target)
	if err != nil {
		return nil, apperr.Validation("assignedTo must be a valid id")
	}
	assignee, err := s.directory.FindAssignableByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ports.ErrNotAssignable) {
			return nil, apperr.Validation("assignedTo does not resolve to an agent or channel partner")
		}
		return nil, err
	}
	return &assignee, nil
}

// GetByID returns a single lead, subject to the actor's transition gate (a
// caller who may not touch the lead may not read it either).
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, leadID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	policy := domain.PolicyFor(actor.Role)
	if policy == nil {
		return transport.LeadResponse{}, apperr.Forbidden("unknown role")
	}
	if err := policy.AuthorizeTransition(&lead, actor); err != nil {
		return transport.LeadResponse{}, err
	}

	return transport.ToLeadResponse(lead, s.interestLabel(ctx, lead, map[uuid.UUID]string{})), nil
}

// List returns the leads visible to the actor with a fresh status breakdown
// keyed by the live catalog names.
func (s *Service) List(ctx context.Context, actor domain.Actor, search, status string) (transport.ListLeadsResponse, error) {
	policy := domain.PolicyFor(actor.Role)
	if policy == nil {
		return transport.ListLeadsResponse{}, apperr.Forbidden("unknown role")
	}
	scope := policy.Scope()

	leads, err := s.store.List(ctx, repository.ListFilter{
		ActorID:         actor.ID,
		All:             scope.All,
		IncludeDeclined: scope.IncludeDeclined,
		Search:          search,
		Status:          status,
	})
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	if scope.HideForeignBroadcasts {
		visible := leads[:0]
		for _, lead := range leads {
			if lead.VisibleToAgent(actor.ID) {
				visible = append(visible, lead)
			}
		}
		leads = visible
	}

	breakdown, err := s.statusBreakdown(ctx, leads)
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	resp := transport.ListLeadsResponse{
		Leads:           s.toResponses(ctx, leads),
		TotalItems:      len(leads),
		StatusBreakdown: breakdown,
	}

	if actor.Role == domain.RoleChannelPartner {
		resp.SourceTypeCounts = annotateSourceTypes(resp.Leads, leads, actor.ID)
	}

	return resp, nil
}

// annotateSourceTypes labels each lead in a channel partner's list with where
// it came from, and returns the per-label counts.
func annotateSourceTypes(responses []transport.LeadResponse, leads []domain.Lead, partnerID uuid.UUID) map[string]int {
	counts := map[string]int{
		"self_lead":           0,
		"admin_assigned_lead": 0,
		"other":               0,
	}
	for i := range leads {
		sourceType := "other"
		switch {
		case leads[i].IsCreator(partnerID):
			sourceType = "self_lead"
		case leads[i].IsAssignee(partnerID) && leads[i].CreatedByRole == domain.RoleAdmin:
			sourceType = "admin_assigned_lead"
		}
		responses[i].SourceType = sourceType
		counts[sourceType]++
	}
	return counts
}

// ListBroadcasted is the admin view of live broadcasts, paginated.
func (s *Service) ListBroadcasted(ctx context.Context, page, limit int) (transport.BroadcastedLeadsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	leads, total, err := s.store.ListBroadcasted(ctx, limit, (page-1)*limit)
	if err != nil {
		return transport.BroadcastedLeadsResponse{}, err
	}

	return transport.BroadcastedLeadsResponse{
		Leads:      s.toResponses(ctx, leads),
		TotalItems: total,
		Page:       page,
		Limit:      limit,
	}, nil
}

// AgentSummary aggregates an agent's lead footprint for their profile view.
func (s *Service) AgentSummary(ctx context.Context, agentID uuid.UUID) (transport.AgentLeadSummary, error) {
	actor := domain.Actor{ID: agentID, Role: domain.RoleAgent}
	listing, err := s.List(ctx, actor, "", "")
	if err != nil {
		return transport.AgentLeadSummary{}, err
	}

	wins, err := s.store.CountAcceptedBy(ctx, agentID)
	if err != nil {
		return transport.AgentLeadSummary{}, err
	}

	return transport.AgentLeadSummary{
		TotalLeads:      listing.TotalItems,
		StatusBreakdown: listing.StatusBreakdown,
		BroadcastWins:   wins,
	}, nil
}

// statusBreakdown counts leads per live catalog status. Catalog names with no
// leads still appear with a zero, and the sentinel "new" is always a key.
func (s *Service) statusBreakdown(ctx context.Context, leads []domain.Lead) (map[string]int, error) {
	names, err := s.statuses.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int, len(names)+1)
	breakdown[domain.StatusNew] = 0
	for _, name := range names {
		breakdown[name] = 0
	}
	for _, lead := range leads {
		breakdown[lead.Status]++
	}
	return breakdown, nil
}

func (s *Service) toResponses(ctx context.Context, leads []domain.Lead) []transport.LeadResponse {
	titleCache := make(map[uuid.UUID]string)
	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, transport.ToLeadResponse(lead, s.interestLabel(ctx, lead, titleCache)))
	}
	return responses
}

// interestLabel resolves a project-id interest to its title, falling back to
// the raw value. Lookup failures degrade to the raw value rather than failing
// the read.
func (s *Service) interestLabel(ctx context.Context, lead domain.Lead, cache map[uuid.UUID]string) string {
	projectID, err := uuid.Parse(lead.InterestedIn)
	if err != nil {
		return lead.InterestedIn
	}
	if title, ok := cache[projectID]; ok {
		return title
	}
	title, err := s.projects.TitleByID(ctx, projectID)
	if err != nil {
		return lead.InterestedIn
	}
	cache[projectID] = title
	return title
}

func (s *Service) fetch(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	return lead, nil
}

// publish fires a domain event; handlers run async so subscriber failures
// never reach the request path.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}
