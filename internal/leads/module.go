// Package leads wires the lead lifecycle module: repository, service, HTTP
// handler and routes.
package leads

import (
	"estate_crm_backend/internal/events"
	internalhttp "estate_crm_backend/internal/http"
	"estate_crm_backend/internal/leads/domain"
	"estate_crm_backend/internal/leads/handler"
	"estate_crm_backend/internal/leads/ports"
	"estate_crm_backend/internal/leads/repository"
	"estate_crm_backend/internal/leads/service"
	"estate_crm_backend/platform/httpkit"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

// New assembles the lead module. Directory, project and status lookups come
// in as ports so the module never imports its sibling contexts.
func New(
	pool *pgxpool.Pool,
	directory ports.Directory,
	projects ports.ProjectResolver,
	statuses ports.StatusCatalog,
	scheduler ports.ReminderScheduler,
	bus events.Bus,
	validate *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, directory, projects, statuses, scheduler, bus, log)
	return &Module{
		svc:     svc,
		handler: handler.New(svc, validate),
	}
}

func (m *Module) Name() string { return "leads" }

// Service exposes the lead service for cross-module adapters (agent profile
// summaries) and the reminder worker.
func (m *Module) Service() *service.Service { return m.svc }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")

	leads.POST("", m.handler.Create)

	// Role-specific list and update channels. The role gate runs before the
	// handler so a caller can never reach another role's channel.
	leads.GET("/admin", httpkit.RequireRole(string(domain.RoleAdmin)), m.handler.List)
	leads.GET("/agent", httpkit.RequireRole(string(domain.RoleAgent)), m.handler.List)
	leads.GET("/channel-partner", httpkit.RequireRole(string(domain.RoleChannelPartner)), m.handler.List)

	leads.GET("/follow-ups/mine", m.handler.ListFollowUps)

	leads.GET("/:id", m.handler.Get)
	// Generic update plus per-role channels; all run the same transition logic,
	// the per-role routes just add the endpoint-role equality check.
	leads.PUT("/:id", m.handler.Update)
	leads.PUT("/:id/admin", httpkit.RequireRole(string(domain.RoleAdmin)), m.handler.Update)
	leads.PUT("/:id/agent", httpkit.RequireRole(string(domain.RoleAgent)), m.handler.Update)
	leads.PUT("/:id/channel-partner", httpkit.RequireRole(string(domain.RoleChannelPartner)), m.handler.Update)

	leads.POST("/:id/accept", httpkit.RequireRole(string(domain.RoleAgent)), m.handler.Accept)
	leads.POST("/:id/decline", httpkit.RequireRole(string(domain.RoleAgent)), m.handler.Decline)

	leads.POST("/:id/follow-ups", m.handler.CreateFollowUp)

	ctx.Admin.GET("/leads/broadcasted", m.handler.ListBroadcasted)
}
