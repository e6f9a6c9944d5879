// Package pipeline provides the status catalog bounded context: the admin
// managed list of pipeline statuses every lead moves through.
package pipeline

import (
	internalhttp "estate_crm_backend/internal/http"
	"estate_crm_backend/internal/pipeline/handler"
	"estate_crm_backend/internal/pipeline/repository"
	"estate_crm_backend/internal/pipeline/service"
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

func (m *Module) Name() string { return "pipeline" }

// Service exposes the catalog for the lead module's status resolution.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	// Every authenticated role may read the catalog; mutation is admin-only.
	statuses := ctx.Protected.Group("/statuses")
	statuses.GET("", m.handler.List)
	statuses.GET("/:id", m.handler.Get)

	ctx.Admin.POST("/statuses", m.handler.Create)
	ctx.Admin.DELETE("/statuses/:id", m.handler.Delete)
}
