// Package projects provides the project catalog bounded context: the
// inventory of developments a lead can be interested in.
package projects

import (
	internalhttp "estate_crm_backend/internal/http"
	"estate_crm_backend/internal/projects/handler"
	"estate_crm_backend/internal/projects/repository"
	"estate_crm_backend/internal/projects/service"
	"estate_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, validate *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{
		handler: handler.New(svc, validate),
		service: svc,
	}
}

func (m *Module) Name() string { return "projects" }

// Service exposes project lookups for the lead interest resolver.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	projects := ctx.Protected.Group("/projects")
	projects.GET("", m.handler.List)
	projects.GET("/:id", m.handler.Get)

	ctx.Admin.POST("/projects", m.handler.Create)
	ctx.Admin.DELETE("/projects/:id", m.handler.Delete)
}
