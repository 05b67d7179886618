package dto

import "procura_backend/internal/models"

type RegisterRequest struct {
	Email       string `json:"email" binding:"required" validate:"required,email"`
	Password    string `json:"password" binding:"required" validate:"required,min=8"`
	FullName    string `json:"full_name" binding:"required" validate:"required,max=120"`
	Role        string `json:"role" binding:"required" validate:"required,oneof=bidder procurement_officer"`
	CompanyName string `json:"company_name" validate:"max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
