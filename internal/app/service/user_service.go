package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ffclash/internal/common"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/database"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	selfUpdateReason  = "User self-update"
	adminUpdateReason = "Admin update"
)

type UserService struct {
	userRepo   repository.UserRepository
	uidLogRepo repository.UIDChangeLogRepository
	tx         database.Transactor
}

func NewUserService(userRepo repository.UserRepository, uidLogRepo repository.UIDChangeLogRepository, tx database.Transactor) *UserService {
	return &UserService{userRepo: userRepo, uidLogRepo: uidLogRepo, tx: tx}
}

type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	FreeFireUID *string `json:"free_fire_uid,omitempty" validate:"omitempty,ffuid"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type ChangeUIDRequest struct {
	FreeFireUID  string  `json:"free_fire_uid" validate:"required,ffuid"`
	ChangeReason *string `json:"change_reason,omitempty"`
}

func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// claimUID fails when uid belongs to someone other than userID.
func (s *UserService) claimUID(ctx context.Context, userID, uid string) error {
	owner, err := s.userRepo.FindByFreeFireUID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if owner.ID != userID {
		return common.NewError(common.ErrConflict, "free fire uid already registered")
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		owner, err := s.userRepo.FindByUsername(ctx, *req.Username)
		if err == nil && owner.ID != userID {
			return nil, common.NewError(common.ErrConflict, "username already taken")
		}
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}

	var uidLog *model.UIDChangeLog
	if req.FreeFireUID != nil && *req.FreeFireUID != user.FreeFireUID {
		if err := s.claimUID(ctx, userID, *req.FreeFireUID); err != nil {
			return nil, err
		}
		oldUID := user.FreeFireUID
		reason := selfUpdateReason
		uidLog = &model.UIDChangeLog{
			ID:           uuid.NewString(),
			UserID:       userID,
			OldUID:       &oldUID,
			NewUID:       *req.FreeFireUID,
			ChangeReason: &reason,
		}
		user.FreeFireUID = *req.FreeFireUID
	}

	if req.Password != nil {
		hashed, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.userRepo.UpdateProfile(ctx, tx, user); err != nil {
			return err
		}
		if uidLog != nil {
			return s.uidLogRepo.Create(ctx, tx, uidLog)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangeUID is the admin override; the log records the acting admin.
func (s *UserService) ChangeUID(ctx context.Context, adminID, userID string, req ChangeUIDRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.claimUID(ctx, userID, req.FreeFireUID); err != nil {
		return nil, err
	}

	reason := adminUpdateReason
	if req.ChangeReason != nil && strings.TrimSpace(*req.ChangeReason) != "" {
		reason = strings.TrimSpace(*req.ChangeReason)
	}

	oldUID := user.FreeFireUID
	user.FreeFireUID = req.FreeFireUID
	uidLog := &model.UIDChangeLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		OldUID:       &oldUID,
		NewUID:       req.FreeFireUID,
		ChangedBy:    &adminID,
		ChangeReason: &reason,
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.userRepo.UpdateProfile(ctx, tx, user); err != nil {
			return err
		}
		return s.uidLogRepo.Create(ctx, tx, uidLog)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to change uid: %w", err)
	}

	logger.WithFields(logrus.Fields{"user_id": userID, "admin_id": adminID}).Info("free fire uid changed by admin")
	return user, nil
}

func (s *UserService) UIDLogs(ctx context.Context, userID string) ([]model.UIDChangeLog, error) {
	logs, err := s.uidLogRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uid logs: %w", err)
	}
	return logs, nil
}
