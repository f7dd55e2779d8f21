package handler

import (
	"time"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// Locale and Redirect only come with HTML form submissions.
type signUpRequest struct {
	Email    string `json:"email"     form:"email"     validate:"required,email"`
	Password string `json:"password"  form:"password"  validate:"required,min=8"`
	FullName string `json:"full_name" form:"full_name"`
	Role     string `json:"role"      form:"role"      validate:"omitempty,oneof=investor broker lawyer mortgage_advisor"`
	Locale   string `json:"-"         form:"locale"`
}

type signInRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Locale   string `json:"-"        form:"locale"`
	Redirect string `json:"-"        form:"redirect"`
}

type userResponse struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	FullName  string         `json:"full_name,omitempty"`
	Role      domain.Role    `json:"role"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitzero"`
}

type authResponse struct {
	User            userResponse `json:"user"`
	Dashboard       string       `json:"dashboard"`
	AccessExpiresAt time.Time    `json:"access_expires_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.RoleOrDefault(),
		Metadata:  u.Metadata,
		CreatedAt: u.CreatedAt,
	}
}
