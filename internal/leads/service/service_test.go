package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/ports"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/transport"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore mirrors the SQL semantics of the pgx repository in memory,
// including the conditional-update acceptance guard.
type fakeStore struct {
	leads     map[uuid.UUID]*domain.Lead
	followUps map[uuid.UUID]domain.FollowUp
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     make(map[uuid.UUID]*domain.Lead),
		followUps: make(map[uuid.UUID]domain.FollowUp),
	}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	for _, lead := range f.leads {
		if strings.EqualFold(lead.Email, params.Email) {
			return domain.Lead{}, repository.ErrDuplicateEmail
		}
	}

	lead := &domain.Lead{
		ID:              uuid.New(),
		Name:            params.Name,
		Email:           params.Email,
		PhoneNumber:     params.PhoneNumber,
		InterestedIn:    params.InterestedIn,
		Source:          params.Source,
		Address:         params.Address,
		PropertyType:    params.PropertyType,
		RequirementType: params.RequirementType,
		Budget:          params.Budget,
		Remark:          params.Remark,
		Status:          params.Status,
		StatusHistory:   []domain.StatusChange{},
		AssignedTo:      params.AssignedTo,
		AssignedToKind:  params.AssignedToKind,
		AssignedToName:  params.AssignedToName,
		CreatedByRole:   params.CreatedByRole,
		CreatedByID:     params.CreatedByID,
		CreatedByName:   params.CreatedByName,
		BroadcastedTo:   []uuid.UUID{},
		DeclinedBy:      []uuid.UUID{},
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	f.leads[lead.ID] = lead
	return *lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return *lead, nil
}

func (f *fakeStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, lead := range f.leads {
		if strings.EqualFold(lead.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) List(_ context.Context, filter repository.ListFilter) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if !filter.All {
			related := lead.IsCreator(filter.ActorID) || lead.IsAssignee(filter.ActorID)
			if filter.IncludeDeclined && lead.HasDeclined(filter.ActorID) {
				related = true
			}
			if !related {
				continue
			}
		}
		if filter.Status != "" && lead.Status != strings.ToLower(filter.Status) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(lead.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *lead)
	}
	return out, nil
}

func (f *fakeStore) AppendStatus(_ context.Context, leadID uuid.UUID, statusName string, statusRef uuid.UUID, entry domain.StatusChange) (domain.Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Status = statusName
	lead.StatusRef = &statusRef
	lead.StatusHistory = append(lead.StatusHistory, entry)
	return *lead, nil
}

func (f *fakeStore) Assign(_ context.Context, leadID uuid.UUID, assignee domain.AssignableActor) (domain.Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	id, kind, name := assignee.ID, assignee.Kind, assignee.Name
	lead.AssignedTo = &id
	lead.AssignedToKind = &kind
	lead.AssignedToName = &name
	lead.IsBroadcasted = false
	lead.BroadcastedTo = []uuid.UUID{}
	lead.LeadAcceptedBy = nil
	lead.LeadAcceptedByName = nil
	lead.AcceptedAt = nil
	return *lead, nil
}

func (f *fakeStore) Broadcast(_ context.Context, leadID uuid.UUID, candidates []uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.IsBroadcasted = true
	lead.BroadcastedTo = append([]uuid.UUID{}, candidates...)
	lead.AssignedTo = nil
	lead.AssignedToKind = nil
	lead.AssignedToName = nil
	lead.LeadAcceptedBy = nil
	lead.LeadAcceptedByName = nil
	lead.AcceptedAt = nil
	return *lead, nil
}

func (f *fakeStore) AcceptBroadcast(_ context.Context, leadID, agentID uuid.UUID, agentName string) (domain.Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.Lead{}, repository.ErrAlreadyAccepted
	}
	if !lead.IsBroadcasted || !lead.IsPendingCandidate(agentID) || lead.LeadAcceptedBy != nil {
		return domain.Lead{}, repository.ErrAlreadyAccepted
	}
	now := time.Now()
	kind := domain.KindAgent
	lead.LeadAcceptedBy = &agentID
	lead.LeadAcceptedByName = &agentName
	lead.AcceptedAt = &now
	lead.AssignedTo = &agentID
	lead.AssignedToKind = &kind
	lead.AssignedToName = &agentName
	lead.IsBroadcasted = false
	lead.BroadcastedTo = []uuid.UUID{}
	return *lead, nil
}

func (f *fakeStore) DeclineBroadcast(_ context.Context, leadID, agentID uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if !lead.HasDeclined(agentID) {
		lead.DeclinedBy = append(lead.DeclinedBy, agentID)
	}
	remaining := lead.BroadcastedTo[:0]
	for _, id := range lead.BroadcastedTo {
		if id != agentID {
			remaining = append(remaining, id)
		}
	}
	lead.BroadcastedTo = remaining
	return *lead, nil
}

func (f *fakeStore) ListBroadcasted(_ context.Context, limit, offset int) ([]domain.Lead, int, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.IsBroadcasted {
			out = append(out, *lead)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) CountAcceptedBy(_ context.Context, agentID uuid.UUID) (int, error) {
	count := 0
	for _, lead := range f.leads {
		if !lead.IsBroadcasted && lead.IsAcceptedBy(agentID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateFollowUp(_ context.Context, params repository.CreateFollowUpParams) (domain.FollowUp, error) {
	followUp := domain.FollowUp{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		ActorID:   params.ActorID,
		Task:      params.Task,
		Notes:     params.Notes,
		DueAt:     params.DueAt,
		CreatedAt: time.Now(),
	}
	f.followUps[followUp.ID] = followUp
	return followUp, nil
}

func (f *fakeStore) GetFollowUp(_ context.Context, id uuid.UUID) (domain.FollowUp, error) {
	followUp, ok := f.followUps[id]
	if !ok {
		return domain.FollowUp{}, repository.ErrNotFound
	}
	return followUp, nil
}

func (f *fakeStore) ListFollowUpsByActor(_ context.Context, actorID uuid.UUID) ([]domain.FollowUp, error) {
	out := make([]domain.FollowUp, 0)
	for _, followUp := range f.followUps {
		if followUp.ActorID == actorID {
			out = append(out, followUp)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	assignables map[uuid.UUID]domain.AssignableActor
	active      []domain.AssignableActor
}

func (f *fakeDirectory) FindAssignableByID(_ context.Context, id uuid.UUID) (domain.AssignableActor, error) {
	assignable, ok := f.assignables[id]
	if !ok {
		return domain.AssignableActor{}, ports.ErrNotAssignable
	}
	return assignable, nil
}

func (f *fakeDirectory) ListActiveAgents(context.Context) ([]domain.AssignableActor, error) {
	return f.active, nil
}

type fakeProjects struct {
	titles map[uuid.UUID]string
}

func (f *fakeProjects) TitleByID(_ context.Context, id uuid.UUID) (string, error) {
	title, ok := f.titles[id]
	if !ok {
		return "", ports.ErrUnknownProject
	}
	return title, nil
}

type fakeStatuses struct {
	entries map[string]ports.StatusEntry
}

func (f *fakeStatuses) ResolveByName(_ context.Context, name string) (ports.StatusEntry, error) {
	entry, ok := f.entries[strings.ToLower(name)]
	if !ok {
		return ports.StatusEntry{}, ports.ErrUnknownStatus
	}
	return entry, nil
}

func (f *fakeStatuses) ListNames(context.Context) ([]string, error) {
	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	return names, nil
}

type fixture struct {
	svc       *Service
	store     *fakeStore
	directory *fakeDirectory
	projects  *fakeProjects
	statuses  *fakeStatuses

	admin   domain.Actor
	agent   domain.Actor
	agent2  domain.Actor
	partner domain.Actor
}

func newFixture() *fixture {
	store := newFakeStore()
	directory := &fakeDirectory{assignables: make(map[uuid.UUID]domain.AssignableActor)}
	projects := &fakeProjects{titles: make(map[uuid.UUID]string)}
	statuses := &fakeStatuses{entries: map[string]ports.StatusEntry{
		"visit scheduled": {ID: uuid.New(), Name: "visit scheduled"},
		"closed":          {ID: uuid.New(), Name: "closed"},
	}}

	f := &fixture{
		svc:       New(store, directory, projects, statuses, nil, nil, logger.New("development")),
		store:     store,
		directory: directory,
		projects:  projects,
		statuses:  statuses,
		admin:     domain.Actor{ID: uuid.New(), Name: "Asha Admin", Role: domain.RoleAdmin},
		agent:     domain.Actor{ID: uuid.New(), Name: "Arun Agent", Role: domain.RoleAgent},
		agent2:    domain.Actor{ID: uuid.New(), Name: "Bina Agent", Role: domain.RoleAgent},
		partner:   domain.Actor{ID: uuid.New(), Name: "Priya Partner", Role: domain.RoleChannelPartner},
	}

	f.directory.assignables[f.agent.ID] = domain.AssignableActor{ID: f.agent.ID, Name: f.agent.Name, Kind: domain.KindAgent}
	f.directory.assignables[f.agent2.ID] = domain.AssignableActor{ID: f.agent2.ID, Name: f.agent2.Name, Kind: domain.KindAgent}
	f.directory.assignables[f.partner.ID] = domain.AssignableActor{ID: f.partner.ID, Name: f.partner.Name, Kind: domain.KindChannelPartner}
	f.directory.active = []domain.AssignableActor{
		{ID: f.agent.ID, Name: f.agent.Name, Kind: domain.KindAgent},
		{ID: f.agent2.ID, Name: f.agent2.Name, Kind: domain.KindAgent},
	}

	return f
}

func createRequest(email string) transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		Name:         "Rahul Buyer",
		Email:        email,
		PhoneNumber:  "+919876543210",
		InterestedIn: "3 BHK in the suburbs",
		Source:       "website",
	}
}

func strPtr(s string) *string { return &s }

func TestCreateDuplicateEmailConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.admin, createRequest("rahul@example.com")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := f.svc.Create(ctx, f.admin, createRequest("RAHUL@example.com"))
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestCreateAgentSelfAssignsAndStripsTarget(t *testing.T) {
	f := newFixture()

	req := createRequest("lead@example.com")
	req.AssignedTo = f.agent2.ID.String() // must be ignored

	resp, err := f.svc.Create(context.Background(), f.agent, req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if resp.AssignedTo == nil || *resp.AssignedTo != f.agent.ID.String() {
		t.Fatalf("agent lead should be self-assigned, got %v", resp.AssignedTo)
	}
	if resp.Status != domain.StatusNew {
		t.Fatalf("new lead must start in %q, got %q", domain.StatusNew, resp.Status)
	}
	if len(resp.StatusHistory) != 0 {
		t.Fatal("new lead must start with empty history")
	}
}

func TestCreatePartnerRequiresTarget(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.partner, createRequest("nobody@example.com"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error without target, got %v", err)
	}

	req := createRequest("somebody@example.com")
	req.AssignedTo = f.agent.ID.String()
	resp, err := f.svc.Create(ctx, f.partner, req)
	if err != nil {
		t.Fatalf("create with target failed: %v", err)
	}
	if resp.AssignedToKind == nil || *resp.AssignedToKind != "agent" {
		t.Fatalf("dual lookup should resolve an agent, got %v", resp.AssignedToKind)
	}
}

func TestCreateInterestResolution(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("short free text rejected", func(t *testing.T) {
		req := createRequest("short@example.com")
		req.InterestedIn = "2b"
		if _, err := f.svc.Create(ctx, f.admin, req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown project rejected", func(t *testing.T) {
		req := createRequest("ghost@example.com")
		req.InterestedIn = uuid.NewString()
		if _, err := f.svc.Create(ctx, f.admin, req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("project reference renders its title", func(t *testing.T) {
		projectID := uuid.New()
		f.projects.titles[projectID] = "Sunrise Towers"

		req := createRequest("tower@example.com")
		req.InterestedIn = projectID.String()
		resp, err := f.svc.Create(ctx, f.admin, req)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if resp.InterestLabel != "Sunrise Towers" {
			t.Fatalf("expected project title label, got %q", resp.InterestLabel)
		}
	})
}

func TestTransitionActionIsExclusive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, f.admin, createRequest("x@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	leadID := uuid.MustParse(resp.ID)

	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{
		Action: strPtr("accept"),
		Status: strPtr("closed"),
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("action combined with status should be rejected, got %v", err)
	}

	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty transition should be rejected, got %v", err)
	}
}

func TestStatusUpdateAppendsExactlyOneEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, f.agent, createRequest("hist@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	leadID := uuid.MustParse(resp.ID)

	updated, err := f.svc.Transition(ctx, f.agent, leadID, transport.UpdateLeadRequest{
		Status: strPtr("visit scheduled"),
	})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}

	if updated.Status != "visit scheduled" {
		t.Fatalf("status not applied, got %q", updated.Status)
	}
	if len(updated.StatusHistory) != 1 {
		t.Fatalf("expected one history entry, got %d", len(updated.StatusHistory))
	}
	entry := updated.StatusHistory[0]
	if entry.ActorID != f.agent.ID.String() || entry.ActorRole != "agent" || entry.Status != "visit scheduled" {
		t.Fatalf("history entry incomplete: %+v", entry)
	}

	if _, err := f.svc.Transition(ctx, f.agent, leadID, transport.UpdateLeadRequest{
		Status: strPtr("imaginary"),
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}
}

func TestBroadcastAll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, f.admin, createRequest("bcast@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	leadID := uuid.MustParse(resp.ID)

	t.Run("no active agents is an error", func(t *testing.T) {
		f.directory.active = nil
		_, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	f.directory.active = []domain.AssignableActor{
		{ID: f.agent.ID, Name: f.agent.Name, Kind: domain.KindAgent},
		{ID: f.agent2.ID, Name: f.agent2.Name, Kind: domain.KindAgent},
	}

	updated, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")})
	if err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if !updated.IsBroadcasted || len(updated.BroadcastedTo) != 2 {
		t.Fatalf("broadcast state wrong: %+v", updated)
	}
	if updated.AssignedTo != nil || updated.LeadAcceptedBy != nil {
		t.Fatal("broadcast must clear assignment and acceptance")
	}
}

func TestDirectAssignmentKeepsDeclineRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.admin, createRequest("keep@example.com"))
	leadID := uuid.MustParse(resp.ID)

	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if _, err := f.svc.Decline(ctx, f.agent2, leadID); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	updated, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{
		AssignedTo: strPtr(f.agent.ID.String()),
	})
	if err != nil {
		t.Fatalf("direct assignment failed: %v", err)
	}

	if updated.IsBroadcasted || len(updated.BroadcastedTo) != 0 {
		t.Fatal("direct assignment must end the broadcast")
	}
	if len(updated.DeclinedBy) != 1 || updated.DeclinedBy[0] != f.agent2.ID.String() {
		t.Fatalf("decline record must survive reassignment, got %v", updated.DeclinedBy)
	}
}

func TestAcceptFirstWriterWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.admin, createRequest("race@example.com"))
	leadID := uuid.MustParse(resp.ID)
	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	won, err := f.svc.Accept(ctx, f.agent, leadID)
	if err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if won.LeadAcceptedBy == nil || *won.LeadAcceptedBy != f.agent.ID.String() {
		t.Fatalf("winner not recorded: %+v", won)
	}
	if won.IsBroadcasted || len(won.BroadcastedTo) != 0 {
		t.Fatal("acceptance must end the broadcast")
	}

	_, err = f.svc.Accept(ctx, f.agent2, leadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("loser should get a conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), f.agent.Name) {
		t.Fatalf("conflict should name the winner, got %q", err.Error())
	}

	// The winner retrying is a harmless no-op.
	if _, err := f.svc.Accept(ctx, f.agent, leadID); err != nil {
		t.Fatalf("winner retry should succeed, got %v", err)
	}
}

func TestDeclineIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.admin, createRequest("meh@example.com"))
	leadID := uuid.MustParse(resp.ID)
	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	first, err := f.svc.Decline(ctx, f.agent, leadID)
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	second, err := f.svc.Decline(ctx, f.agent, leadID)
	if err != nil {
		t.Fatalf("repeated decline should be a no-op, got %v", err)
	}

	if len(first.DeclinedBy) != 1 || len(second.DeclinedBy) != 1 {
		t.Fatalf("declined_by must not grow on repeats: %v vs %v", first.DeclinedBy, second.DeclinedBy)
	}

	// An outsider who was never offered the lead cannot decline it.
	outsider := domain.Actor{ID: uuid.New(), Name: "Out Sider", Role: domain.RoleAgent}
	if _, err := f.svc.Decline(ctx, outsider, leadID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("outsider decline should be forbidden, got %v", err)
	}
}

func TestAgentListHidesForeignBroadcasts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Agent creates a lead, admin broadcasts it, the rival accepts.
	resp, _ := f.svc.Create(ctx, f.agent, createRequest("stolen@example.com"))
	leadID := uuid.MustParse(resp.ID)
	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	// While the broadcast is live, the creator no longer sees it.
	listing, err := f.svc.List(ctx, f.agent, "", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listing.TotalItems != 0 {
		t.Fatalf("live broadcast should be hidden from creator's list, got %d items", listing.TotalItems)
	}

	if _, err := f.svc.Accept(ctx, f.agent2, leadID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// After the rival wins, the lead stays gone for the creator but shows up
	// for the winner.
	listing, _ = f.svc.List(ctx, f.agent, "", "")
	if listing.TotalItems != 0 {
		t.Fatal("stolen lead should remain hidden from the creator")
	}
	winnerListing, _ := f.svc.List(ctx, f.agent2, "", "")
	if winnerListing.TotalItems != 1 {
		t.Fatalf("winner should see the accepted lead, got %d", winnerListing.TotalItems)
	}
}

func TestListStatusBreakdownKeys(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.agent, createRequest("bd@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	listing, err := f.svc.List(ctx, f.agent, "", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if listing.StatusBreakdown[domain.StatusNew] != 1 {
		t.Fatalf("expected one new lead, got %d", listing.StatusBreakdown[domain.StatusNew])
	}
	// Catalog names with no leads still appear, zeroed.
	if count, ok := listing.StatusBreakdown["closed"]; !ok || count != 0 {
		t.Fatalf("catalog status missing from breakdown: %v", listing.StatusBreakdown)
	}
}

func TestPartnerListSourceTypes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Partner's own lead.
	own := createRequest("own@example.com")
	own.AssignedTo = f.agent.ID.String()
	if _, err := f.svc.Create(ctx, f.partner, own); err != nil {
		t.Fatalf("partner create failed: %v", err)
	}

	// Admin assigns a lead to the partner.
	assigned := createRequest("given@example.com")
	assigned.AssignedTo = f.partner.ID.String()
	if _, err := f.svc.Create(ctx, f.admin, assigned); err != nil {
		t.Fatalf("admin create failed: %v", err)
	}

	listing, err := f.svc.List(ctx, f.partner, "", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if listing.TotalItems != 2 {
		t.Fatalf("partner should see both leads, got %d", listing.TotalItems)
	}
	if listing.SourceTypeCounts["self_lead"] != 1 || listing.SourceTypeCounts["admin_assigned_lead"] != 1 {
		t.Fatalf("source type counts wrong: %v", listing.SourceTypeCounts)
	}
	for _, lead := range listing.Leads {
		if lead.SourceType == "" {
			t.Fatalf("lead %s missing source type annotation", lead.ID)
		}
	}
}

func TestTransitionAuthorizationGate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.agent, createRequest("gate@example.com"))
	leadID := uuid.MustParse(resp.ID)

	stranger := domain.Actor{ID: uuid.New(), Name: "No Body", Role: domain.RoleAgent}
	_, err := f.svc.Transition(ctx, stranger, leadID, transport.UpdateLeadRequest{Status: strPtr("closed")})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("stranger transition should be forbidden, got %v", err)
	}

	if _, err := f.svc.GetByID(ctx, stranger, leadID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("stranger read should be forbidden, got %v", err)
	}
}

func TestBroadcastDeclineAcceptEndState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	agent3 := domain.Actor{ID: uuid.New(), Name: "Chetan Agent", Role: domain.RoleAgent}
	f.directory.assignables[agent3.ID] = domain.AssignableActor{ID: agent3.ID, Name: agent3.Name, Kind: domain.KindAgent}
	f.directory.active = append(f.directory.active, domain.AssignableActor{ID: agent3.ID, Name: agent3.Name, Kind: domain.KindAgent})

	resp, _ := f.svc.Create(ctx, f.admin, createRequest("full@example.com"))
	leadID := uuid.MustParse(resp.ID)

	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	if _, err := f.svc.Decline(ctx, f.agent2, leadID); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	final, err := f.svc.Accept(ctx, f.agent, leadID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if final.AssignedTo == nil || *final.AssignedTo != f.agent.ID.String() {
		t.Fatalf("lead should settle on the acceptor, got %v", final.AssignedTo)
	}
	if final.IsBroadcasted || len(final.BroadcastedTo) != 0 {
		t.Fatal("broadcast state must be cleared after acceptance")
	}
	if len(final.DeclinedBy) != 1 || final.DeclinedBy[0] != f.agent2.ID.String() {
		t.Fatalf("decline record wrong: %v", final.DeclinedBy)
	}
	if final.AcceptedAt == nil {
		t.Fatal("acceptance timestamp missing")
	}
}

func TestCreateUnresolvableAssigneeRejected(t *testing.T) {
	f := newFixture()

	req := createRequest("nowhere@example.com")
	req.AssignedTo = uuid.NewString()

	_, err := f.svc.Create(context.Background(), f.partner, req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unresolvable target, got %v", err)
	}
	if len(f.store.leads) != 0 {
		t.Fatal("no lead must be persisted when the target does not resolve")
	}
}

func TestForbiddenTransitionLeavesNoTrace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.agent, createRequest("trace@example.com"))
	leadID := uuid.MustParse(resp.ID)

	stranger := domain.Actor{ID: uuid.New(), Name: "No Body", Role: domain.RoleAgent}
	if _, err := f.svc.Transition(ctx, stranger, leadID, transport.UpdateLeadRequest{
		Status: strPtr("visit scheduled"),
	}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	lead := f.store.leads[leadID]
	if lead.Status != domain.StatusNew || len(lead.StatusHistory) != 0 {
		t.Fatalf("rejected transition must not mutate the lead: %+v", lead)
	}
}

func TestPendingCandidateMustAcceptOrDecline(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.admin, createRequest("offer@example.com"))
	leadID := uuid.MustParse(resp.ID)
	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{AssignedTo: strPtr("all")}); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	// A candidate cannot grab the lead by assigning it to themselves; the
	// only way off the offer is the accept/decline claim.
	if _, err := f.svc.Transition(ctx, f.agent2, leadID, transport.UpdateLeadRequest{
		AssignedTo: strPtr(f.agent2.ID.String()),
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("candidate self-assignment should be rejected, got %v", err)
	}

	// Same for a bare status change while the offer is open.
	if _, err := f.svc.Transition(ctx, f.agent2, leadID, transport.UpdateLeadRequest{
		Status: strPtr("visit scheduled"),
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("candidate status change should be rejected, got %v", err)
	}

	lead := f.store.leads[leadID]
	if !lead.IsBroadcasted || lead.AssignedTo != nil || lead.LeadAcceptedBy != nil || len(lead.StatusHistory) != 0 {
		t.Fatalf("rejected candidate update must leave the broadcast untouched: %+v", lead)
	}

	// Answering the offer through the same endpoint still works.
	won, err := f.svc.Transition(ctx, f.agent2, leadID, transport.UpdateLeadRequest{Action: strPtr("accept")})
	if err != nil {
		t.Fatalf("accept via transition failed: %v", err)
	}
	if won.LeadAcceptedBy == nil || *won.LeadAcceptedBy != f.agent2.ID.String() {
		t.Fatalf("acceptance not recorded: %+v", won)
	}
}

func TestAcceptWithoutOfferIsForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Fresh lead that was never broadcast.
	resp, _ := f.svc.Create(ctx, f.admin, createRequest("fresh@example.com"))
	leadID := uuid.MustParse(resp.ID)

	_, err := f.svc.Accept(ctx, f.agent, leadID)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("accept without an offer should be forbidden, got %v", err)
	}

	// Directly assigned, still never accepted by anyone: same answer.
	if _, err := f.svc.Transition(ctx, f.admin, leadID, transport.UpdateLeadRequest{
		AssignedTo: strPtr(f.agent2.ID.String()),
	}); err != nil {
		t.Fatalf("direct assignment failed: %v", err)
	}
	if _, err := f.svc.Accept(ctx, f.agent, leadID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("accept of a directly assigned lead should be forbidden, got %v", err)
	}
}

func TestFollowUpScheduling(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, _ := f.svc.Create(ctx, f.agent, createRequest("fup@example.com"))
	leadID := uuid.MustParse(resp.ID)

	followUp, err := f.svc.CreateFollowUp(ctx, f.agent, leadID, transport.CreateFollowUpRequest{
		Task:         "call about site visit",
		FollowUpDate: time.Now().AddDate(0, 0, 7).Format(transport.FollowUpDateLayout),
	})
	if err != nil {
		t.Fatalf("follow-up create failed: %v", err)
	}
	if followUp.DueAt == nil {
		t.Fatal("due date not recorded")
	}

	if _, err := f.svc.CreateFollowUp(ctx, f.agent, leadID, transport.CreateFollowUpRequest{
		Task:         "bad date",
		FollowUpDate: "31-12-2026",
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("malformed date should be rejected, got %v", err)
	}

	mine, err := f.svc.ListFollowUps(ctx, f.agent.ID)
	if err != nil {
		t.Fatalf("list follow-ups failed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected one follow-up, got %d", len(mine))
	}
}
