// Package transport defines request/response shapes for the pipeline status
// catalog.
package transport

import "time"

type CreateStatusRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=60"`
	Description string `json:"description" validate:"max=500"`
}

type StatusResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListStatusesResponse struct {
	Statuses   []StatusResponse `json:"statuses"`
	TotalItems int              `json:"totalItems"`
}
