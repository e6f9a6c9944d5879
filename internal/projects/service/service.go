// Package service implements project catalog operations and lookups for the
// lead interest field.
package service

import (
	"context"
	"errors"

	"estate_crm_backend/internal/projects/repository"
	"estate_crm_backend/internal/projects/transport"
	"estate_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req transport.CreateProjectRequest) (transport.ProjectResponse, error) {
	project, err := s.repo.Create(ctx, req.Title, req.Description, req.Location)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	return toResponse(project), nil
}

func (s *Service) List(ctx context.Context) (transport.ListProjectsResponse, error) {
	projects, err := s.repo.ListAll(ctx)
	if err != nil {
		return transport.ListProjectsResponse{}, err
	}

	resp := transport.ListProjectsResponse{
		Projects:   make([]transport.ProjectResponse, 0, len(projects)),
		TotalItems: len(projects),
	}
	for _, project := range projects {
		resp.Projects = append(resp.Projects, toResponse(project))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProjectResponse{}, apperr.NotFound("project not found")
		}
		return transport.ProjectResponse{}, err
	}
	return toResponse(project), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("project not found")
	}
	return err
}

// TitleByID resolves a project reference to its display title.
func (s *Service) TitleByID(ctx context.Context, id uuid.UUID) (string, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return project.Title, nil
}

// ExistsByID reports whether a live project with this id exists.
func (s *Service) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func toResponse(project repository.Project) transport.ProjectResponse {
	return transport.ProjectResponse{
		ID:          project.ID.String(),
		Title:       project.Title,
		Description: project.Description,
		Location:    project.Location,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
