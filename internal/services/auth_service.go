package services

import (
	"errors"

	"gorm.io/gorm"

	"procura_backend/internal/auth"
	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(actor models.Actor) (*models.User, error)
}

type authService struct {
	users         repositories.UserRepository
	notifications NotificationService
}

func NewAuthService(users repositories.UserRepository, notifications NotificationService) AuthService {
	return &authService{users: users, notifications: notifications}
}

// Register creates an account and signs the user in. Self-registration is
// limited to bidder and procurement_officer; administrator accounts come from
// the seed or an admin role change.
func (s *authService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role := models.UserRole(req.Role)
	if role == models.UserRoleAdministrator {
		return nil, apperrors.ErrInvalidUserRole
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidUserRole
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	if _, err := s.users.FindByEmail(req.Email); err == nil {
		return nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		FullName:     req.FullName,
	}
	if req.CompanyName != "" {
		user.CompanyName = &req.CompanyName
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.InternalError(err)
	}

	// Welcome entry seeds the ledger; losing it must not fail registration.
	if err := s.notifications.Append(user.ID, models.NotificationTypeInfo,
		"Welcome to Procura",
		"Your account is ready. Browse open tenders to get started.",
	); err != nil {
		logger.Warn("welcome notification failed", "user_id", user.ID, "error", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return &dto.AuthResponse{Token: token, User: user}, nil
}

// Login answers a wrong email and a wrong password identically.
func (s *authService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Me(actor models.Actor) (*models.User, error) {
	user, err := s.users.FindByID(actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "users")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}
