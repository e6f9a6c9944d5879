// Package directory provides the people bounded context: agents and channel
// partners, their activation state, and agent self-service.
package directory

import (
	"estate_crm_backend/internal/directory/handler"
	"estate_crm_backend/internal/directory/ports"
	"estate_crm_backend/internal/directory/repository"
	"estate_crm_backend/internal/directory/service"
	internalhttp "estate_crm_backend/internal/http"
	"estate_crm_backend/platform/httpkit"
	"estate_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, validate *validator.Validator) *Module {
	svc := service.New(repository.New(pool), nil)
	return &Module{
		handler: handler.New(svc, validate),
		service: svc,
	}
}

func (m *Module) Name() string { return "directory" }

// Service exposes directory lookups for the lead module and auth.
func (m *Module) Service() *service.Service { return m.service }

// WireLeadStats connects the agent profile view to the lead module.
func (m *Module) WireLeadStats(stats ports.LeadStats) {
	m.service.SetLeadStats(stats)
}

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	ctx.Admin.POST("/agents", m.handler.CreateAgent)
	ctx.Admin.GET("/agents", m.handler.ListAgents)
	ctx.Admin.GET("/agents/:id", m.handler.GetAgent)
	ctx.Admin.PATCH("/agents/:id/active", m.handler.SetAgentActive)

	ctx.Admin.POST("/channel-partners", m.handler.CreatePartner)
	ctx.Admin.GET("/channel-partners", m.handler.ListPartners)
	ctx.Admin.GET("/channel-partners/:id", m.handler.GetPartner)
	ctx.Admin.PATCH("/channel-partners/:id/active", m.handler.SetPartnerActive)

	agents := ctx.Protected.Group("/agents", httpkit.RequireRole("agent"))
	agents.GET("/me", m.handler.Me)
	agents.POST("/notes", m.handler.CreateNote)
	agents.GET("/notes", m.handler.ListNotes)
	agents.DELETE("/notes/:id", m.handler.DeleteNote)
}
