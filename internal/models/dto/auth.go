package dto

import "github.com/hongminglow/fintrack-be/internal/models"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"notblank,max=150"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token   string      `json:"token"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

// ActiveAccount is one entry of GET /accounts/active.
type ActiveAccount struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
	IsActive bool    `json:"isActive"`
}
