// Package service implements the login flow: per-role credential lookup,
// bcrypt verification and access token issuing.
package service

import (
	"context"
	"errors"
	"time"

	"estate_crm_backend/internal/auth/repository"
	"estate_crm_backend/internal/auth/transport"
	"estate_crm_backend/platform/apperr"
	"estate_crm_backend/platform/config"
	"estate_crm_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Login verifies credentials for the requested role and returns a signed
// access token. Bad email and bad password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	cred, err := s.repo.FindByEmail(ctx, req.Role, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.AuthEvent("login", req.Email, false, "unknown account")
			return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
		}
		return transport.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("login", req.Email, false, "bad password")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	if !cred.Active {
		s.log.AuthEvent("login", req.Email, false, "account deactivated")
		return transport.LoginResponse{}, apperr.Forbidden("account is deactivated")
	}

	token, err := s.signJWT(cred.ID, req.Role, cred.Name)
	if err != nil {
		return transport.LoginResponse{}, err
	}

	// Best-effort presence stamp; a failed write must not fail the login.
	if req.Role == "agent" {
		if err := s.repo.MarkAgentSeen(ctx, cred.ID); err != nil {
			s.log.Warn("failed to mark agent seen", "agent_id", cred.ID.String(), "error", err)
		}
	}

	s.log.AuthEvent("login", req.Email, true, req.Role)

	return transport.LoginResponse{
		AccessToken: token,
		Profile: transport.Profile{
			ID:    cred.ID.String(),
			Name:  cred.Name,
			Email: cred.Email,
			Role:  req.Role,
		},
	}, nil
}

func (s *Service) signJWT(userID uuid.UUID, role, name string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": accessTokenType,
		"role": role,
		"name": name,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
