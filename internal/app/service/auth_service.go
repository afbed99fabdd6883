package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ffclash/internal/common"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errInvalidCredentials = common.NewError(common.ErrUnauthorized, "invalid credentials")

type AuthService struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
}

func NewAuthService(userRepo repository.UserRepository, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{userRepo: userRepo, adminRepo: adminRepo}
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FreeFireUID string `json:"free_fire_uid" validate:"required,ffuid"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type AdminAuthResponse struct {
	Admin *model.Admin `json:"admin"`
	Token string       `json:"token"`
}

// ensureAvailable fails with a conflict when lookup finds a row.
func ensureAvailable(ctx context.Context, lookup func(context.Context, string) (*model.User, error), value, message string) error {
	_, err := lookup(ctx, value)
	if err == nil {
		return common.NewError(common.ErrConflict, message)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	if err := ensureAvailable(ctx, s.userRepo.FindByUsername, req.Username, "username already taken"); err != nil {
		return nil, err
	}
	if err := ensureAvailable(ctx, s.userRepo.FindByEmail, req.Email, "email already registered"); err != nil {
		return nil, err
	}
	if err := ensureAvailable(ctx, s.userRepo.FindByFreeFireUID, req.FreeFireUID, "free fire uid already registered"); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		FreeFireUID:    req.FreeFireUID,
		Balance:        decimal.Zero,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo might return common.ErrConflict
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, model.TokenTypeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	logger.WithField("user_id", user.ID).Info("user registered")
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	// Try finding by email first, then by username
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.UsernameOrEmail))
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, req.UsernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, errInvalidCredentials
	}

	token, err := security.GenerateToken(user.ID, model.TokenTypeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminAuthResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, admin.HashedPassword) {
		return nil, errInvalidCredentials
	}

	token, err := security.GenerateToken(admin.ID, model.TokenTypeAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	logger.WithField("admin_id", admin.ID).Info("admin logged in")
	return &AdminAuthResponse{Admin: admin, Token: token}, nil
}

// EnsureAdmin creates the admin or refreshes its email and password.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*model.Admin, error) {
	if username == "" || email == "" || len(password) < 6 {
		return nil, common.NewValidationError("username and email are required, password must have minimum length 6")
	}
	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &model.Admin{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          strings.ToLower(email),
		HashedPassword: hashed,
	}
	if err := s.adminRepo.Upsert(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to save admin: %w", err)
	}
	return admin, nil
}

// CurrentUser reloads the token subject.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, nil, id)
}

func (s *AuthService) CurrentAdmin(ctx context.Context, id string) (*model.Admin, error) {
	return s.adminRepo.FindByID(ctx, id)
}
