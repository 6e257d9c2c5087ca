package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	apperrors "github.com/Viperzz6988/NurvioV5-admin/pkg/errors"
)

const (
	maintenanceKey = "nurvio:settings:maintenance"
	flagsKey       = "nurvio:feature_flags"
)

// Settings caches panel settings and feature flags in Redis so the
// maintenance middleware does not hit PostgreSQL on every request.
type Settings struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSettings creates a settings cache with the given entry TTL.
func NewSettings(client *redis.Client, ttl time.Duration) *Settings {
	return &Settings{client: client, ttl: ttl}
}

// GetMaintenance returns the cached maintenance setting.
// Returns ErrNotFound on a cache miss.
func (c *Settings) GetMaintenance(ctx context.Context) (*domain.MaintenanceSetting, error) {
	data, err := c.client.Get(ctx, maintenanceKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get cached maintenance setting: %w", err)
	}

	var m domain.MaintenanceSetting
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal cached maintenance setting: %w", err)
	}

	return &m, nil
}

// SetMaintenance caches the maintenance setting.
func (c *Settings) SetMaintenance(ctx context.Context, m *domain.MaintenanceSetting) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal maintenance setting: %w", err)
	}

	if err := c.client.Set(ctx, maintenanceKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache maintenance setting: %w", err)
	}

	return nil
}

// GetFlags returns the cached feature flag list.
// Returns ErrNotFound on a cache miss.
func (c *Settings) GetFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	data, err := c.client.Get(ctx, flagsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get cached feature flags: %w", err)
	}

	var flags []domain.FeatureFlag
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("unmarshal cached feature flags: %w", err)
	}

	return flags, nil
}

// SetFlags caches the feature flag list.
func (c *Settings) SetFlags(ctx context.Context, flags []domain.FeatureFlag) error {
	data, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshal feature flags: %w", err)
	}

	if err := c.client.Set(ctx, flagsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache feature flags: %w", err)
	}

	return nil
}

// Invalidate drops the cached maintenance setting and flag list.
func (c *Settings) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, maintenanceKey, flagsKey).Err(); err != nil {
		return fmt.Errorf("invalidate settings cache: %w", err)
	}
	return nil
}

// Flush clears the entire cache database. Wired to the admin cache-clear action.
func (c *Settings) Flush(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}
