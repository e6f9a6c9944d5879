// Package transport defines the request and response shapes for the lead
// HTTP surface.
package transport

import (
	"time"

	"estate_crm_backend/internal/leads/domain"
)

// FollowUpDateLayout is the wire format for follow-up dates (DD/MM/YYYY).
const FollowUpDateLayout = "02/01/2006"

type CreateLeadRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=120"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,min=7,max=20"`
	InterestedIn    string `json:"interestedIn" validate:"required"`
	Source          string `json:"source" validate:"required"`
	Address         string `json:"address"`
	PropertyType    string `json:"propertyType"`
	RequirementType string `json:"requirementType"`
	Budget          string `json:"budget"`
	Remark          string `json:"remark"`
	// AssignedTo is ignored for agents, required for channel partners,
	// optional for admins.
	AssignedTo string `json:"assignedTo" validate:"omitempty,uuid"`
}

// UpdateLeadRequest carries a lead transition. Action is exclusive with the
// other two fields; Status and AssignedTo may combine.
type UpdateLeadRequest struct {
	Status     *string `json:"leadStatus" validate:"omitempty,min=1"`
	AssignedTo *string `json:"assignedTo" validate:"omitempty,min=1"`
	Action     *string `json:"action" validate:"omitempty,oneof=accept decline"`
}

type CreateFollowUpRequest struct {
	Task  string `json:"task" validate:"required,min=2,max=200"`
	Notes string `json:"notes" validate:"max=2000"`
	// FollowUpDate is DD/MM/YYYY; when present a reminder is scheduled.
	FollowUpDate string `json:"followUpDate" validate:"omitempty,datetime=02/01/2006"`
}

type StatusChangeResponse struct {
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	ActorRole string    `json:"actorRole"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LeadResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	InterestedIn    string `json:"interestedIn"`
	InterestLabel   string `json:"interestLabel"`
	Source          string `json:"source"`
	Address         string `json:"address,omitempty"`
	PropertyType    string `json:"propertyType,omitempty"`
	RequirementType string `json:"requirementType,omitempty"`
	Budget          string `json:"budget,omitempty"`
	Remark          string `json:"remark,omitempty"`

	Status        string                 `json:"leadStatus"`
	StatusRef     *string                `json:"statusRef,omitempty"`
	StatusHistory []StatusChangeResponse `json:"statusHistory"`

	AssignedTo     *string `json:"assignedTo,omitempty"`
	AssignedToKind *string `json:"assignedToKind,omitempty"`
	AssignedToName *string `json:"assignedToName,omitempty"`

	CreatedByRole string `json:"createdByRole"`
	CreatedByID   string `json:"createdById"`
	CreatedByName string `json:"createdByName"`

	IsBroadcasted      bool       `json:"isBroadcasted"`
	BroadcastedTo      []string   `json:"broadcastedTo"`
	DeclinedBy         []string   `json:"declinedBy"`
	LeadAcceptedBy     *string    `json:"leadAcceptedBy,omitempty"`
	LeadAcceptedByName *string    `json:"leadAcceptedByName,omitempty"`
	AcceptedAt         *time.Time `json:"acceptedAt,omitempty"`

	// SourceType is set on channel-partner lists only.
	SourceType string `json:"sourceType,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListLeadsResponse struct {
	Leads           []LeadResponse `json:"leads"`
	TotalItems      int            `json:"totalItems"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
	// SourceTypeCounts is present on channel-partner lists only.
	SourceTypeCounts map[string]int `json:"sourceTypeCounts,omitempty"`
}

type BroadcastedLeadsResponse struct {
	Leads      []LeadResponse `json:"leads"`
	TotalItems int            `json:"totalItems"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

type FollowUpResponse struct {
	ID           string     `json:"id"`
	LeadID       string     `json:"leadId"`
	LeadName     string     `json:"leadName,omitempty"`
	Task         string     `json:"task"`
	Notes        string     `json:"notes,omitempty"`
	FollowUpDate string     `json:"followUpDate,omitempty"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// AgentLeadSummary is the lead side of an agent's profile.
type AgentLeadSummary struct {
	TotalLeads      int            `json:"totalLeads"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
	BroadcastWins   int            `json:"broadcastWins"`
}

// ToLeadResponse maps the domain entity onto the wire shape. interestLabel is
// filled by the caller when the interest resolves to a project title.
func ToLeadResponse(lead domain.Lead, interestLabel string) LeadResponse {
	resp := LeadResponse{
		ID:              lead.ID.String(),
		Name:            lead.Name,
		Email:           lead.Email,
		PhoneNumber:     lead.PhoneNumber,
		InterestedIn:    lead.InterestedIn,
		InterestLabel:   interestLabel,
		Source:          lead.Source,
		Address:         lead.Address,
		PropertyType:    lead.PropertyType,
		RequirementType: lead.RequirementType,
		Budget:          lead.Budget,
		Remark:          lead.Remark,
		Status:          lead.Status,
		CreatedByRole:   string(lead.CreatedByRole),
		CreatedByID:     lead.CreatedByID.String(),
		CreatedByName:   lead.CreatedByName,
		IsBroadcasted:   lead.IsBroadcasted,
		AcceptedAt:      lead.AcceptedAt,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}

	if interestLabel == "" {
		resp.InterestLabel = lead.InterestedIn
	}

	if lead.StatusRef != nil {
		ref := lead.StatusRef.String()
		resp.StatusRef = &ref
	}

	resp.StatusHistory = make([]StatusChangeResponse, 0, len(lead.StatusHistory))
	for _, change := range lead.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, StatusChangeResponse{
			ActorID:   change.ActorID.String(),
			ActorName: change.ActorName,
			ActorRole: string(change.ActorRole),
			Status:    change.Status,
			UpdatedAt: change.UpdatedAt,
		})
	}

	if lead.AssignedTo != nil {
		id := lead.AssignedTo.String()
		resp.AssignedTo = &id
	}
	if lead.AssignedToKind != nil {
		kind := string(*lead.AssignedToKind)
		resp.AssignedToKind = &kind
	}
	resp.AssignedToName = lead.AssignedToName

	resp.BroadcastedTo = make([]string, 0, len(lead.BroadcastedTo))
	for _, id := range lead.BroadcastedTo {
		resp.BroadcastedTo = append(resp.BroadcastedTo, id.String())
	}
	resp.DeclinedBy = make([]string, 0, len(lead.DeclinedBy))
	for _, id := range lead.DeclinedBy {
		resp.DeclinedBy = append(resp.DeclinedBy, id.String())
	}

	if lead.LeadAcceptedBy != nil {
		id := lead.LeadAcceptedBy.String()
		resp.LeadAcceptedBy = &id
	}
	resp.LeadAcceptedByName = lead.LeadAcceptedByName

	return resp
}

func ToFollowUpResponse(followUp domain.FollowUp) FollowUpResponse {
	resp := FollowUpResponse{
		ID:        followUp.ID.String(),
		LeadID:    followUp.LeadID.String(),
		LeadName:  followUp.LeadName,
		Task:      followUp.Task,
		Notes:     followUp.Notes,
		DueAt:     followUp.DueAt,
		CreatedAt: followUp.CreatedAt,
	}
	if followUp.DueAt != nil {
		resp.FollowUpDate = followUp.DueAt.Format(FollowUpDateLayout)
	}
	return resp
}
