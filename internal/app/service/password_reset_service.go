package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ffclash/internal/common"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
)

const ResetTokenTTL = 2 * time.Hour

// ForgotPasswordMessage is returned whether or not the email is registered.
const ForgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

var errInvalidResetToken = common.NewError(common.ErrBadRequest, "invalid or expired reset token")

type PasswordResetService struct {
	userRepo      repository.UserRepository
	tokenRepo     repository.PasswordResetTokenRepository
	tx            database.Transactor
	notifications *NotificationService
	baseURL       string
	now           func() time.Time
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	tx database.Transactor,
	notifications *NotificationService,
	baseURL string,
) *PasswordResetService {
	return &PasswordResetService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		tx:            tx,
		notifications: notifications,
		baseURL:       strings.TrimRight(baseURL, "/"),
		now:           time.Now,
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *PasswordResetService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	if err := common.ValidateStruct(req); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return ForgotPasswordMessage, nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	record := &model.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	link := s.baseURL + "/reset-password?token=" + token
	s.notifications.SendEmail(ctx, user.Email, "Reset your FF Clash password",
		fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. It expires in 2 hours.\n\n%s\n\nIf you did not ask for this, ignore this email.", user.Username, link))

	logger.WithField("user_id", user.ID).Info("password reset requested")
	return ForgotPasswordMessage, nil
}

func (s *PasswordResetService) VerifyToken(ctx context.Context, token string) error {
	record, err := s.tokenRepo.FindByToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errInvalidResetToken
		}
		return fmt.Errorf("failed to load reset token: %w", err)
	}
	if !record.Valid(s.now()) {
		return errInvalidResetToken
	}
	return nil
}

func (s *PasswordResetService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := common.ValidateStruct(req); err != nil {
		return err
	}
	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var user *model.User
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		record, err := s.tokenRepo.FindByToken(ctx, tx, req.Token)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return errInvalidResetToken
			}
			return err
		}
		if !record.Valid(s.now()) {
			return errInvalidResetToken
		}
		if err := s.userRepo.UpdatePassword(ctx, tx, record.UserID, hashed); err != nil {
			return err
		}
		if err := s.tokenRepo.MarkUsed(ctx, tx, record.ID); err != nil {
			return err
		}
		user, err = s.userRepo.FindByID(ctx, tx, record.UserID)
		return err
	})
	if err != nil {
		return err
	}

	s.notifications.SendEmail(ctx, user.Email, "Your FF Clash password was changed",
		fmt.Sprintf("Hi %s,\n\nYour password has been reset successfully. If this was not you, contact support right away.", user.Username))
	logger.WithField("user_id", user.ID).Info("password reset completed")
	return nil
}

// PurgeStale deletes used and expired tokens.
func (s *PasswordResetService) PurgeStale(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteStale(ctx, s.now())
}
