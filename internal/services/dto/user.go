package dto

import "procura_backend/internal/models"

// UpdateProfileRequest deliberately has no role field: profile updates can
// never change the actor's own role.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty" validate:"omitempty,max=120"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=120"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required" validate:"required,is-user-role"`
}

type UserListResponse struct {
	Users      []models.User `json:"users"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}
