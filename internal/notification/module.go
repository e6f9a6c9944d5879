// Package notification fans lead lifecycle events out to connected clients
// over SSE and to mailboxes over SMTP. Everything here is best-effort: a
// failed notification is logged and dropped, never surfaced to the request
// that caused it.
package notification

import (
	"context"
	"fmt"

	"estate_crm_backend/internal/email"
	"estate_crm_backend/internal/events"
	internalhttp "estate_crm_backend/internal/http"
	"estate_crm_backend/internal/notification/sse"
	"estate_crm_backend/platform/httpkit"
	"estate_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ActorReader resolves an actor id to contact details for email delivery.
// Implemented by an adapter over the directory.
type ActorReader interface {
	ContactByID(ctx context.Context, id uuid.UUID) (name string, emailAddr string, err error)
}

type Module struct {
	sse    *sse.Service
	emails email.Sender
	actors ActorReader
	log    *logger.Logger
}

func NewModule(bus events.Bus, emails email.Sender, actors ActorReader, log *logger.Logger) *Module {
	m := &Module{
		sse:    sse.New(),
		emails: emails,
		actors: actors,
		log:    log,
	}
	m.subscribe(bus)
	return m
}

func (m *Module) Name() string { return "notification" }

// SSE exposes the hub for direct pushes (reminder worker).
func (m *Module) SSE() *sse.Service { return m.sse }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.sse.Handler(func(c *gin.Context) (uuid.UUID, string, bool) {
		id := httpkit.GetIdentity(c)
		if !id.IsAuthenticated() {
			return uuid.Nil, "", false
		}
		return id.UserID(), id.Role(), true
	}))
}

func (m *Module) subscribe(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(m.onLeadCreated))
	bus.Subscribe(events.LeadAssigned{}.EventName(), events.HandlerFunc(m.onLeadAssigned))
	bus.Subscribe(events.LeadBroadcasted{}.EventName(), events.HandlerFunc(m.onLeadBroadcasted))
	bus.Subscribe(events.LeadAccepted{}.EventName(), events.HandlerFunc(m.onLeadAccepted))
	bus.Subscribe(events.LeadDeclined{}.EventName(), events.HandlerFunc(m.onLeadDeclined))
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(m.onStatusChanged))
	bus.Subscribe(events.FollowUpDue{}.EventName(), events.HandlerFunc(m.onFollowUpDue))
}

func (m *Module) onLeadCreated(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.LeadCreated)
	if !ok {
		return nil
	}

	m.sse.PublishToRoom(sse.AdminRoom, sse.Event{
		Type:    sse.EventLeadCreated,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("New lead %q created by %s", event.LeadName, event.CreatedByName),
		Data:    event,
	})
	return nil
}

func (m *Module) onLeadAssigned(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.LeadAssigned)
	if !ok {
		return nil
	}

	m.sse.Publish(event.AssigneeID, sse.Event{
		Type:    sse.EventLeadAssigned,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("Lead %q has been assigned to you", event.LeadName),
		Data:    event,
	})

	name, emailAddr, err := m.actors.ContactByID(ctx, event.AssigneeID)
	if err != nil {
		m.log.NotifyError(raw.EventName(), event.AssigneeID.String(), err)
		return nil
	}
	if err := m.emails.SendLeadAssignedEmail(ctx, emailAddr, name, event.LeadName); err != nil {
		m.log.NotifyError(raw.EventName(), emailAddr, err)
	}
	return nil
}

func (m *Module) onLeadBroadcasted(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.LeadBroadcasted)
	if !ok {
		return nil
	}

	payload := sse.Event{
		Type:    sse.EventLeadBroadcasted,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("New lead %q is up for grabs", event.LeadName),
		Data:    event,
	}

	g, _ := errgroup.WithContext(ctx)
	for _, candidateID := range event.CandidateIDs {
		id := candidateID
		g.Go(func() error {
			m.sse.Publish(id, payload)
			return nil
		})
	}
	return g.Wait()
}

func (m *Module) onLeadAccepted(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.LeadAccepted)
	if !ok {
		return nil
	}

	taken := sse.Event{
		Type:    sse.EventLeadTaken,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("Lead %q was taken by %s", event.LeadName, event.AcceptedByName),
		Data:    event,
	}

	g, _ := errgroup.WithContext(ctx)
	for _, loserID := range event.LosingCandidateIDs {
		id := loserID
		g.Go(func() error {
			m.sse.Publish(id, taken)
			return nil
		})
	}
	g.Go(func() error {
		m.sse.PublishToRoom(sse.AdminRoom, taken)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	name, emailAddr, err := m.actors.ContactByID(ctx, event.AcceptedByID)
	if err != nil {
		m.log.NotifyError(raw.EventName(), event.AcceptedByID.String(), err)
		return nil
	}
	if err := m.emails.SendLeadAcceptedEmail(ctx, emailAddr, name, event.LeadName); err != nil {
		m.log.NotifyError(raw.EventName(), emailAddr, err)
	}
	return nil
}

func (m *Module) onLeadDeclined(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.LeadDeclined)
	if !ok {
		return nil
	}

	m.sse.PublishToRoom(sse.AdminRoom, sse.Event{
		Type:    sse.EventLeadDeclined,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("%s declined lead %q", event.DeclinedByName, event.LeadName),
		Data:    event,
	})
	return nil
}

func (m *Module) onStatusChanged(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.LeadStatusChanged)
	if !ok {
		return nil
	}

	m.sse.PublishToRoom(sse.AdminRoom, sse.Event{
		Type:    sse.EventStatusChanged,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("Lead %q moved to %s", event.LeadName, event.Status),
		Data:    event,
	})
	return nil
}

func (m *Module) onFollowUpDue(ctx context.Context, raw events.Event) error {
	event, ok := raw.(events.FollowUpDue)
	if !ok {
		return nil
	}

	m.sse.Publish(event.AgentID, sse.Event{
		Type:    sse.EventFollowUpDue,
		LeadID:  event.LeadID,
		Message: fmt.Sprintf("Follow-up due for lead %q: %s", event.LeadName, event.Task),
		Data:    event,
	})

	name, emailAddr, err := m.actors.ContactByID(ctx, event.AgentID)
	if err != nil {
		m.log.NotifyError(raw.EventName(), event.AgentID.String(), err)
		return nil
	}
	if err := m.emails.SendFollowUpReminderEmail(ctx, emailAddr, name, event.LeadName, event.Task); err != nil {
		m.log.NotifyError(raw.EventName(), emailAddr, err)
	}
	return nil
}
