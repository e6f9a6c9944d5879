// Package sse provides Server-Sent Events support for real-time lead
// notifications.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType names the SSE events the frontend listens for.
type EventType string

const (
	EventLeadCreated     EventType = "lead_created"
	EventLeadAssigned    EventType = "lead_assigned"
	EventLeadBroadcasted EventType = "lead_broadcasted"
	EventLeadTaken       EventType = "lead_taken"
	EventLeadDeclined    EventType = "lead_declined"
	EventStatusChanged   EventType = "lead_status_changed"
	EventFollowUpDue     EventType = "followup_due"
)

// AdminRoom is the shared room every connected admin joins.
const AdminRoom = "admins"

// Event is an SSE payload.
type Event struct {
	Type    EventType   `json:"type"`
	LeadID  uuid.UUID   `json:"leadId,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// client is one open SSE connection.
type client struct {
	userID uuid.UUID
	room   string
	events chan Event
}

// Service manages SSE connections: per-user channels plus named rooms.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	rooms   map[string][]uuid.UUID
}

func New() *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		rooms:   make(map[string][]uuid.UUID),
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.userID] = append(s.clients[c.userID], c)
	if c.room != "" {
		s.rooms[c.room] = append(s.rooms[c.room], c.userID)
	}
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}

	if c.room != "" {
		members := s.rooms[c.room]
		for i, id := range members {
			if id == c.userID {
				s.rooms[c.room] = append(members[:i], members[i+1:]...)
				break
			}
		}
	}

	close(c.events)
}

// Publish sends an event to every open connection of one user. Slow clients
// drop events rather than block the publisher.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Sends happen under the read lock: removeClient and Close need the write
	// lock to close a channel, so no send can hit a closed channel. The
	// non-blocking send keeps a full client buffer from pinning the lock.
	for _, c := range s.clients[userID] {
		select {
		case c.events <- event:
		default:
		}
	}
}

// PublishToRoom fans an event out to every member of a room, once per user.
func (s *Service) PublishToRoom(room string, event Event) {
	s.mu.RLock()
	userIDs := make([]uuid.UUID, len(s.rooms[room]))
	copy(userIDs, s.rooms[room])
	s.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		s.Publish(userID, event)
	}
}

// Handler returns the Gin handler for the SSE stream. Admins are placed in
// the shared admin room on connect.
func (s *Service) Handler(getIdentity func(*gin.Context) (uuid.UUID, string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := getIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		room := ""
		if role == "admin" {
			room = AdminRoom
		}

		cl := &client{
			userID: userID,
			room:   room,
			events: make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": userID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every open connection.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
	s.rooms = make(map[string][]uuid.UUID)
}
