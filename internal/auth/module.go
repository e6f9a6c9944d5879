// Package auth provides the authentication bounded context.
package auth

import (
	"estate_crm_backend/internal/auth/handler"
	"estate_crm_backend/internal/auth/repository"
	"estate_crm_backend/internal/auth/service"
	internalhttp "estate_crm_backend/internal/http"
	"estate_crm_backend/platform/config"
	"estate_crm_backend/platform/logger"
	"estate_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, validate *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), cfg, log)
	return &Module{handler: handler.New(svc, validate)}
}

func (m *Module) Name() string { return "auth" }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	// Login sits on the public group behind the stricter auth rate limiter.
	auth := ctx.V1.Group("/auth")
	if ctx.AuthRateLimiter != nil {
		auth.Use(ctx.AuthRateLimiter.RateLimit())
	}
	auth.POST("/login", m.handler.Login)
}
