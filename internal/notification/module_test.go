package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"estate_crm_backend/internal/events"
	"estate_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type sentMail struct {
	to       string
	name     string
	leadName string
	task     string
}

type fakeSender struct {
	mu       sync.Mutex
	assigned []sentMail
	accepted []sentMail
	reminded []sentMail
	fail     error
}

func (f *fakeSender) SendLeadAssignedEmail(_ context.Context, to, name, leadName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.assigned = append(f.assigned, sentMail{to: to, name: name, leadName: leadName})
	return nil
}

func (f *fakeSender) SendLeadAcceptedEmail(_ context.Context, to, name, leadName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.accepted = append(f.accepted, sentMail{to: to, name: name, leadName: leadName})
	return nil
}

func (f *fakeSender) SendFollowUpReminderEmail(_ context.Context, to, name, leadName, task string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.reminded = append(f.reminded, sentMail{to: to, name: name, leadName: leadName, task: task})
	return nil
}

type fakeActors struct {
	contacts map[uuid.UUID][2]string
}

func (f *fakeActors) ContactByID(_ context.Context, id uuid.UUID) (string, string, error) {
	contact, ok := f.contacts[id]
	if !ok {
		return "", "", errors.New("actor not found")
	}
	return contact[0], contact[1], nil
}

func TestLeadAssignedSendsEmail(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	agentID := uuid.New()
	actors := &fakeActors{contacts: map[uuid.UUID][2]string{
		agentID: {"Arun Agent", "arun@example.com"},
	}}

	NewModule(bus, sender, actors, logger.New("development"))

	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       uuid.New(),
		LeadName:     "Rahul Buyer",
		AssigneeID:   agentID,
		AssigneeName: "Arun Agent",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(sender.assigned) != 1 {
		t.Fatalf("expected one assignment email, got %d", len(sender.assigned))
	}
	mail := sender.assigned[0]
	if mail.to != "arun@example.com" || mail.leadName != "Rahul Buyer" {
		t.Fatalf("wrong mail: %+v", mail)
	}
}

func TestLeadAssignedUnknownContactIsDropped(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	actors := &fakeActors{contacts: map[uuid.UUID][2]string{}}

	NewModule(bus, sender, actors, logger.New("development"))

	// A missing contact is logged and dropped, never an error for the
	// publisher.
	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     uuid.New(),
		LeadName:   "Rahul Buyer",
		AssigneeID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("handler should swallow lookup failures, got %v", err)
	}
	if len(sender.assigned) != 0 {
		t.Fatal("no email should be sent without a contact")
	}
}

func TestLeadAcceptedConfirmsWinner(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	winnerID := uuid.New()
	actors := &fakeActors{contacts: map[uuid.UUID][2]string{
		winnerID: {"Arun Agent", "arun@example.com"},
	}}

	NewModule(bus, sender, actors, logger.New("development"))

	err := bus.PublishSync(context.Background(), events.LeadAccepted{
		BaseEvent:          events.NewBaseEvent(),
		LeadID:             uuid.New(),
		LeadName:           "Rahul Buyer",
		AcceptedByID:       winnerID,
		AcceptedByName:     "Arun Agent",
		LosingCandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(sender.accepted) != 1 {
		t.Fatalf("expected one confirmation email, got %d", len(sender.accepted))
	}
	if sender.accepted[0].to != "arun@example.com" {
		t.Fatalf("wrong recipient: %+v", sender.accepted[0])
	}
}

func TestFollowUpDueSendsReminder(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{}
	agentID := uuid.New()
	actors := &fakeActors{contacts: map[uuid.UUID][2]string{
		agentID: {"Arun Agent", "arun@example.com"},
	}}

	NewModule(bus, sender, actors, logger.New("development"))

	err := bus.PublishSync(context.Background(), events.FollowUpDue{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		LeadName:  "Rahul Buyer",
		AgentID:   agentID,
		Task:      "call about site visit",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(sender.reminded) != 1 {
		t.Fatalf("expected one reminder email, got %d", len(sender.reminded))
	}
	if sender.reminded[0].task != "call about site visit" {
		t.Fatalf("wrong task: %+v", sender.reminded[0])
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	sender := &fakeSender{fail: errors.New("smtp down")}
	agentID := uuid.New()
	actors := &fakeActors{contacts: map[uuid.UUID][2]string{
		agentID: {"Arun Agent", "arun@example.com"},
	}}

	NewModule(bus, sender, actors, logger.New("development"))

	err := bus.PublishSync(context.Background(), events.LeadAssigned{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     uuid.New(),
		LeadName:   "Rahul Buyer",
		AssigneeID: agentID,
	})
	if err != nil {
		t.Fatalf("send failure should not bubble up, got %v", err)
	}
}
