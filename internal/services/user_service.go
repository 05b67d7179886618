package services

import (
	"errors"

	"gorm.io/gorm"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

type UserService interface {
	UpdateProfile(actor models.Actor, req *dto.UpdateProfileRequest) (*models.User, error)
	ListUsers(actor models.Actor, page, pageSize int) (*dto.UserListResponse, error)
	ChangeRole(actor models.Actor, userID string, req *dto.ChangeRoleRequest) (*models.User, error)
}

type userService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) UserService {
	return &userService{users: users}
}

// UpdateProfile writes the actor's own profile fields. Role and email are not
// reachable from here.
func (s *userService) UpdateProfile(actor models.Actor, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.FindByID(actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "users")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.CompanyName != nil {
		user.CompanyName = req.CompanyName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if err := s.users.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *userService) ListUsers(actor models.Actor, page, pageSize int) (*dto.UserListResponse, error) {
	if actor.Role != models.UserRoleAdministrator {
		return nil, apperrors.ErrInsufficientPermissions
	}

	page = normalizePage(page)
	pageSize = normalizePageSize(pageSize)

	users, total, err := s.users.List(page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.UserListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ChangeRole reassigns another account's role. Admin only; an admin cannot
// demote themselves, which keeps at least one administrator reachable.
func (s *userService) ChangeRole(actor models.Actor, userID string, req *dto.ChangeRoleRequest) (*models.User, error) {
	if actor.Role != models.UserRoleAdministrator {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if actor.UserID == userID {
		return nil, apperrors.ErrInvalidOperation("users", "Administrators cannot change their own role")
	}

	role := models.UserRole(req.Role)
	if !role.Valid() {
		return nil, apperrors.ErrInvalidUserRole
	}

	if err := s.users.UpdateRole(userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "users")
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("user role changed", "user_id", userID, "role", role, "changed_by", actor.UserID)
	return user, nil
}
