package repository

import (
	"context"
	"time"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
)

// UserFilter narrows List queries from the admin panel.
type UserFilter struct {
	// Search matches username or email as a substring, case-insensitive.
	Search string
	// Role, when non-empty, keeps only users holding that role.
	Role string
	// Banned, when non-nil, filters on the ban flag.
	Banned *bool

	Skip int
	Take int
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// FindByIdentifier retrieves a user by exact email or username match.
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)

	// List returns users matching the filter plus the unpaginated total.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error

	// BulkDelete removes all users with the given IDs, returning the count removed.
	BulkDelete(ctx context.Context, ids []string) (int, error)

	// BulkSetRoles replaces the role set for all users with the given IDs.
	BulkSetRoles(ctx context.Context, ids []string, roles []string) (int, error)

	// BulkSetBanned sets the ban flag for all users with the given IDs.
	BulkSetBanned(ctx context.Context, ids []string, banned bool) (int, error)

	// TouchLastLogin sets the user's last_login_at to now.
	TouchLastLogin(ctx context.Context, id string) error
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ListActiveByUserID returns the user's refresh tokens that have not been
	// revoked. Expiry is not filtered here; callers re-check it per candidate.
	ListActiveByUserID(ctx context.Context, userID string) ([]domain.RefreshToken, error)

	// RevokeAllForUser revokes all active refresh tokens for the given user.
	// Revoking a user with no active tokens is a no-op.
	RevokeAllForUser(ctx context.Context, userID string) error
}

// AuditLogFilter narrows audit log queries.
type AuditLogFilter struct {
	UserID string
	Action string
	From   *time.Time
	To     *time.Time

	Skip int
	Take int
}

// AuditLogRepository defines the interface for audit log persistence.
type AuditLogRepository interface {
	// Create inserts an audit record.
	Create(ctx context.Context, entry *domain.AuditLog) error

	// List returns audit records matching the filter, newest first, plus the
	// unpaginated total.
	List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, int, error)
}

// FeatureFlagRepository defines the interface for feature flag persistence.
type FeatureFlagRepository interface {
	// Upsert creates or updates a flag by key.
	Upsert(ctx context.Context, key string, enabled bool) (*domain.FeatureFlag, error)

	// List returns all flags ordered by key.
	List(ctx context.Context) ([]domain.FeatureFlag, error)
}

// SettingRepository defines the interface for settings persistence.
type SettingRepository interface {
	// Get retrieves a setting by key.
	Get(ctx context.Context, key string) (*domain.Setting, error)

	// Set creates or replaces a setting value.
	Set(ctx context.Context, setting *domain.Setting) error

	// List returns all settings ordered by key.
	List(ctx context.Context) ([]domain.Setting, error)
}

// LeaderboardRepository defines the interface for leaderboard persistence.
type LeaderboardRepository interface {
	// ListVisible returns entries ordered by score descending, excluding
	// hidden entries and entries owned by guest-role users.
	ListVisible(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)

	// ListAll returns every entry, including hidden ones, for the admin view.
	ListAll(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// ExportRepository produces and restores full data snapshots.
type ExportRepository interface {
	// Export reads all exportable tables into a bundle.
	Export(ctx context.Context) (*domain.ExportBundle, error)

	// Import wipes and recreates all exportable tables from the bundle
	// inside a single transaction.
	Import(ctx context.Context, bundle *domain.ExportBundle) error
}
