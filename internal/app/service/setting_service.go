package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ffclash/internal/common"
	"ffclash/internal/domain/model"
	"ffclash/internal/domain/repository"
	"ffclash/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	settingsCacheKey = "ffclash:settings"
	settingsCacheTTL = 5 * time.Minute
)

var defaultLimit = model.AmountLimits{Min: decimal.NewFromInt(20), Max: decimal.NewFromInt(1000)}

// SettingService serves key/value settings. When cache is non-nil the full
// set is cached in Redis and dropped on every write.
type SettingService struct {
	repo  repository.SettingRepository
	cache *redis.Client
}

func NewSettingService(repo repository.SettingRepository, cache *redis.Client) *SettingService {
	return &SettingService{repo: repo, cache: cache}
}

type CreateSettingRequest struct {
	Key         string  `json:"key" validate:"required,max=100"`
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}

type UpdateSettingRequest struct {
	Value       string  `json:"value"`
	Description *string `json:"description,omitempty"`
}

func (s *SettingService) List(ctx context.Context) ([]model.SystemSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *SettingService) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "setting not found")
		}
		return nil, fmt.Errorf("failed to load setting: %w", err)
	}
	return setting, nil
}

func (s *SettingService) Create(ctx context.Context, req CreateSettingRequest) (*model.SystemSetting, error) {
	req.Key = strings.TrimSpace(req.Key)
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	setting := &model.SystemSetting{
		ID:          uuid.NewString(),
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, setting); err != nil {
		return nil, fmt.Errorf("failed to create setting: %w", err)
	}
	s.invalidate(ctx)
	return setting, nil
}

func (s *SettingService) Update(ctx context.Context, key string, req UpdateSettingRequest) (*model.SystemSetting, error) {
	setting := &model.SystemSetting{Key: key, Value: req.Value, Description: req.Description}
	if err := s.repo.Update(ctx, setting); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "setting not found")
		}
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}
	s.invalidate(ctx)
	return setting, nil
}

// SeedDefaults inserts the default settings that are not present yet.
func (s *SettingService) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	for _, d := range model.DefaultSettings {
		setting := d
		setting.ID = uuid.NewString()
		ok, err := s.repo.InsertIfMissing(ctx, &setting)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed %s: %w", d.Key, err)
		}
		if ok {
			inserted++
		}
	}
	s.invalidate(ctx)
	return inserted, nil
}

// values returns every setting as key -> value, from cache when possible.
func (s *SettingService) values(ctx context.Context) (map[string]string, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, settingsCacheKey).Bytes()
		if err == nil {
			var cached map[string]string
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Warnf("settings cache read failed: %v", err)
		}
	}

	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	values := make(map[string]string, len(settings))
	for _, st := range settings {
		values[st.Key] = st.Value
	}

	if s.cache != nil {
		if raw, err := json.Marshal(values); err == nil {
			if err := s.cache.Set(ctx, settingsCacheKey, raw, settingsCacheTTL).Err(); err != nil {
				logger.Warnf("settings cache write failed: %v", err)
			}
		}
	}
	return values, nil
}

func (s *SettingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
		logger.Warnf("settings cache invalidation failed: %v", err)
	}
}

func parseAmount(values map[string]string, key string, fallback decimal.Decimal) decimal.Decimal {
	raw, ok := values[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		logger.Warnf("setting %s has non numeric value %q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func limitsFrom(values map[string]string, minKey, maxKey string) model.AmountLimits {
	return model.AmountLimits{
		Min: parseAmount(values, minKey, defaultLimit.Min),
		Max: parseAmount(values, maxKey, defaultLimit.Max),
	}
}

func (s *SettingService) BalanceAddLimits(ctx context.Context) (model.AmountLimits, error) {
	values, err := s.values(ctx)
	if err != nil {
		return model.AmountLimits{}, err
	}
	return limitsFrom(values, model.SettingMinBalanceAdd, model.SettingMaxBalanceAdd), nil
}

func (s *SettingService) WithdrawLimits(ctx context.Context) (model.AmountLimits, error) {
	values, err := s.values(ctx)
	if err != nil {
		return model.AmountLimits{}, err
	}
	return limitsFrom(values, model.SettingMinWithdraw, model.SettingMaxWithdraw), nil
}

func (s *SettingService) SocialLinks(ctx context.Context) (*model.SocialLinks, error) {
	values, err := s.values(ctx)
	if err != nil {
		return nil, err
	}
	return &model.SocialLinks{
		Facebook: values[model.SettingSocialFacebook],
		Telegram: values[model.SettingSocialTelegram],
		Whatsapp: values[model.SettingSocialWhatsapp],
	}, nil
}

func (s *SettingService) Public(ctx context.Context) (*model.PublicSettings, error) {
	values, err := s.values(ctx)
	if err != nil {
		return nil, err
	}
	return &model.PublicSettings{
		BalanceAdd: limitsFrom(values, model.SettingMinBalanceAdd, model.SettingMaxBalanceAdd),
		Withdraw:   limitsFrom(values, model.SettingMinWithdraw, model.SettingMaxWithdraw),
		Social: model.SocialLinks{
			Facebook: values[model.SettingSocialFacebook],
			Telegram: values[model.SettingSocialTelegram],
			Whatsapp: values[model.SettingSocialWhatsapp],
		},
	}, nil
}
