package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/database"
	apperrors "github.com/Viperzz6988/NurvioV5-admin/pkg/errors"
)

// FeatureFlagRepository implements repository.FeatureFlagRepository using PostgreSQL.
type FeatureFlagRepository struct {
	db database.DBTX
}

// NewFeatureFlagRepository creates a new PostgreSQL-backed feature flag repository.
func NewFeatureFlagRepository(db database.DBTX) *FeatureFlagRepository {
	return &FeatureFlagRepository{db: db}
}

// Upsert creates or updates a flag by key and returns the stored row.
func (r *FeatureFlagRepository) Upsert(ctx context.Context, key string, enabled bool) (*domain.FeatureFlag, error) {
	query := `
		INSERT INTO feature_flags (key, enabled, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at
		RETURNING key, enabled, updated_at`

	var f domain.FeatureFlag
	err := r.db.QueryRow(ctx, query, key, enabled, time.Now().UTC()).Scan(&f.Key, &f.Enabled, &f.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert feature flag: %w", err)
	}

	return &f, nil
}

// List returns all flags ordered by key.
func (r *FeatureFlagRepository) List(ctx context.Context) ([]domain.FeatureFlag, error) {
	rows, err := r.db.Query(ctx, `SELECT key, enabled, updated_at FROM feature_flags ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list feature flags: %w", err)
	}
	defer rows.Close()

	var flags []domain.FeatureFlag
	for rows.Next() {
		var f domain.FeatureFlag
		if err := rows.Scan(&f.Key, &f.Enabled, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan feature flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature flags: %w", err)
	}

	return flags, nil
}

// SettingRepository implements repository.SettingRepository using PostgreSQL.
type SettingRepository struct {
	db database.DBTX
}

// NewSettingRepository creates a new PostgreSQL-backed settings repository.
func NewSettingRepository(db database.DBTX) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get retrieves a setting by key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var s domain.Setting
	err := r.db.QueryRow(ctx, `SELECT key, value FROM settings WHERE key = $1`, key).Scan(&s.Key, &s.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan setting: %w", err)
	}

	return &s, nil
}

// Set creates or replaces a setting value.
func (r *SettingRepository) Set(ctx context.Context, setting *domain.Setting) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := r.db.Exec(ctx, query, setting.Key, setting.Value); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}

	return nil
}

// List returns all settings ordered by key.
func (r *SettingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []domain.Setting
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return settings, nil
}
