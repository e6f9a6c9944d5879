// Package transport defines request/response shapes for the people directory.
package transport

import (
	"time"

	"estate_crm_backend/internal/directory/ports"
)

type CreateAgentRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=20"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type CreatePartnerRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=20"`
	CompanyName string `json:"companyName" validate:"max=150"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type CreateNoteRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

type AgentResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Active      bool       `json:"active"`
	LastSeen    *time.Time `json:"lastSeen,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type PartnerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CompanyName string    `json:"companyName,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NoteResponse struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// MeResponse is the agent's own profile with their lead footprint.
type MeResponse struct {
	Profile AgentResponse     `json:"profile"`
	Leads   ports.LeadSummary `json:"leads"`
}
