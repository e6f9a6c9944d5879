// Package transport defines request/response shapes for authentication.
package transport

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin agent channel_partner"`
}

type LoginResponse struct {
	AccessToken string  `json:"accessToken"`
	Profile     Profile `json:"profile"`
}

type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
