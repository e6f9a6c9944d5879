// Package service implements the pipeline status catalog operations.
package service

import (
	"context"
	"errors"

	"estate_crm_backend/internal/pipeline/repository"
	"estate_crm_backend/internal/pipeline/transport"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req transport.CreateStatusRequest) (transport.StatusResponse, error) {
	status, err := s.repo.Create(ctx, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return transport.StatusResponse{}, apperr.Conflict("a status with this name already exists")
		}
		return transport.StatusResponse{}, err
	}
	return toResponse(status), nil
}

func (s *Service) List(ctx context.Context) (transport.ListStatusesResponse, error) {
	statuses, err := s.repo.ListAll(ctx)
	if err != nil {
		return transport.ListStatusesResponse{}, err
	}

	resp := transport.ListStatusesResponse{
		Statuses:   make([]transport.StatusResponse, 0, len(statuses)),
		TotalItems: len(statuses),
	}
	for _, status := range statuses {
		resp.Statuses = append(resp.Statuses, toResponse(status))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.StatusResponse, error) {
	status, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StatusResponse{}, apperr.NotFound("status not found")
		}
		return transport.StatusResponse{}, err
	}
	return toResponse(status), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("status not found")
	}
	return err
}

// ResolveByName matches a status name against the live catalog.
func (s *Service) ResolveByName(ctx context.Context, name string) (repository.Status, error) {
	status, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Status{}, apperr.NotFound("status not found")
		}
		return repository.Status{}, err
	}
	return status, nil
}

// ListNames returns the live catalog names in creation order.
func (s *Service) ListNames(ctx context.Context) ([]string, error) {
	statuses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.Name)
	}
	return names, nil
}

func toResponse(status repository.Status) transport.StatusResponse {
	return transport.StatusResponse{
		ID:          status.ID.String(),
		Name:        status.Name,
		Description: status.Description,
		CreatedAt:   status.CreatedAt,
		UpdatedAt:   status.UpdatedAt,
	}
}
