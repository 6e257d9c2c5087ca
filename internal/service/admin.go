package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Viperzz6988/NurvioV5-admin/internal/audit"
	"github.com/Viperzz6988/NurvioV5-admin/internal/cache"
	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
	apperrors "github.com/Viperzz6988/NurvioV5-admin/pkg/errors"
)

// minPasswordLength is the minimum password length required for admin-created accounts.
const minPasswordLength = 8

// Actor identifies the admin performing a mutation, for audit purposes.
type Actor struct {
	ID        string
	IP        string
	UserAgent string
}

// PoolStats is a snapshot of database pool usage for the metrics endpoint.
type PoolStats struct {
	TotalConns int32 `json:"totalConns"`
	IdleConns  int32 `json:"idleConns"`
	MaxConns   int32 `json:"maxConns"`
}

// SystemMetrics is the payload served by GET /admin/metrics.
type SystemMetrics struct {
	UptimeSeconds  int64     `json:"uptimeSeconds"`
	Goroutines     int       `json:"goroutines"`
	HeapAllocBytes uint64    `json:"heapAllocBytes"`
	NumCPU         int       `json:"numCpu"`
	DB             PoolStats `json:"db"`
}

// AdminService implements the administrative operations of the panel.
type AdminService struct {
	userRepo        repository.UserRepository
	flagRepo        repository.FeatureFlagRepository
	settingRepo     repository.SettingRepository
	auditRepo       repository.AuditLogRepository
	leaderboardRepo repository.LeaderboardRepository
	exportRepo      repository.ExportRepository
	settingsCache   *cache.Settings
	auditor         *audit.Recorder
	poolStats       func() PoolStats
	startedAt       time.Time
	logger          *slog.Logger
}

// NewAdminService creates a new admin service. poolStats may be nil when no
// database pool is attached (tests).
func NewAdminService(
	userRepo repository.UserRepository,
	flagRepo repository.FeatureFlagRepository,
	settingRepo repository.SettingRepository,
	auditRepo repository.AuditLogRepository,
	leaderboardRepo repository.LeaderboardRepository,
	exportRepo repository.ExportRepository,
	settingsCache *cache.Settings,
	auditor *audit.Recorder,
	poolStats func() PoolStats,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		flagRepo:        flagRepo,
		settingRepo:     settingRepo,
		auditRepo:       auditRepo,
		leaderboardRepo: leaderboardRepo,
		exportRepo:      exportRepo,
		settingsCache:   settingsCache,
		auditor:         auditor,
		poolStats:       poolStats,
		startedAt:       time.Now().UTC(),
		logger:          logger,
	}
}

// --- Users ---

// CreateUserInput holds the parameters for creating a user from the admin panel.
type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Roles    []string
}

// UpdateUserInput holds the parameters for updating a user. Nil fields are
// left unchanged.
type UpdateUserInput struct {
	Email    *string
	Username *string
	Password *string
	Roles    []string
	IsBanned *bool
}

// ListUsers returns users matching the filter plus the unpaginated total.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// CreateUser creates a user account with an admin-assigned role set.
func (s *AdminService) CreateUser(ctx context.Context, actor Actor, input CreateUserInput) (*domain.User, error) {
	roles, err := domain.ParseRoles(input.Roles)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hashed),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit(ctx, actor, audit.ActionUserCreated, map[string]any{"userId": user.ID, "username": user.Username})

	return user, nil
}

// UpdateUser applies the non-nil fields of input to the user.
func (s *AdminService) UpdateUser(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if input.Roles != nil {
		roles, err := domain.ParseRoles(input.Roles)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		user.Roles = roles
	}
	if input.IsBanned != nil {
		user.IsBanned = *input.IsBanned
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit(ctx, actor, audit.ActionUserUpdated, map[string]any{"userId": user.ID})

	return user, nil
}

// DeleteUser removes a user. Admins cannot delete their own account.
func (s *AdminService) DeleteUser(ctx context.Context, actor Actor, id string) error {
	if id == actor.ID {
		return apperrors.InvalidInput("cannot delete your own account")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit(ctx, actor, audit.ActionUserDeleted, map[string]any{"userId": id})

	return nil
}

// BulkDeleteUsers removes the given users, silently skipping the acting admin.
func (s *AdminService) BulkDeleteUsers(ctx context.Context, actor Actor, ids []string) (int, error) {
	ids = excludeID(ids, actor.ID)
	if len(ids) == 0 {
		return 0, nil
	}

	count, err := s.userRepo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete users: %w", err)
	}

	s.audit(ctx, actor, audit.ActionBulkDelete, map[string]any{"ids": ids, "deleted": count})

	return count, nil
}

// BulkSetRoles replaces the role set on the given users.
func (s *AdminService) BulkSetRoles(ctx context.Context, actor Actor, ids []string, roleSet []string) (int, error) {
	roles, err := domain.ParseRoles(roleSet)
	if err != nil {
		return 0, apperrors.InvalidInput(err.Error())
	}

	count, err := s.userRepo.BulkSetRoles(ctx, ids, roles)
	if err != nil {
		return 0, fmt.Errorf("bulk set roles: %w", err)
	}

	s.audit(ctx, actor, audit.ActionBulkRole, map[string]any{"ids": ids, "roles": roles})

	return count, nil
}

// BulkSetBanned flips the ban flag on the given users, silently skipping the
// acting admin when banning.
func (s *AdminService) BulkSetBanned(ctx context.Context, actor Actor, ids []string, banned bool) (int, error) {
	if banned {
		ids = excludeID(ids, actor.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	count, err := s.userRepo.BulkSetBanned(ctx, ids, banned)
	if err != nil {
		return 0, fmt.Errorf("bulk set banned: %w", err)
	}

	s.audit(ctx, actor, audit.ActionBulkBan, map[string]any{"ids": ids, "banned": banned})

	return count, nil
}

// --- Feature flags, maintenance, cache ---

// ListFlags returns all feature flags, reading through the cache.
func (s *AdminService) ListFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	if flags, err := s.settingsCache.GetFlags(ctx); err == nil {
		return flags, nil
	}

	flags, err := s.flagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feature flags: %w", err)
	}

	if err := s.settingsCache.SetFlags(ctx, flags); err != nil {
		s.logger.WarnContext(ctx, "failed to cache feature flags", slog.String("error", err.Error()))
	}

	return flags, nil
}

// ToggleFlag creates or updates a feature flag and invalidates the cache.
func (s *AdminService) ToggleFlag(ctx context.Context, actor Actor, key string, enabled bool) (*domain.FeatureFlag, error) {
	flag, err := s.flagRepo.Upsert(ctx, key, enabled)
	if err != nil {
		return nil, fmt.Errorf("toggle feature flag: %w", err)
	}

	if err := s.settingsCache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate settings cache", slog.String("error", err.Error()))
	}

	s.audit(ctx, actor, audit.ActionFlagToggled, map[string]any{"key": key, "enabled": enabled})

	return flag, nil
}

// Maintenance returns the current maintenance setting, reading through the
// cache. A missing setting means maintenance is off.
func (s *AdminService) Maintenance(ctx context.Context) (*domain.MaintenanceSetting, error) {
	if m, err := s.settingsCache.GetMaintenance(ctx); err == nil {
		return m, nil
	}

	setting, err := s.settingRepo.Get(ctx, domain.SettingKeyMaintenance)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.MaintenanceSetting{}, nil
		}
		return nil, fmt.Errorf("get maintenance setting: %w", err)
	}

	var m domain.MaintenanceSetting
	if err := unmarshalSetting(setting, &m); err != nil {
		return nil, err
	}

	if err := s.settingsCache.SetMaintenance(ctx, &m); err != nil {
		s.logger.WarnContext(ctx, "failed to cache maintenance setting", slog.String("error", err.Error()))
	}

	return &m, nil
}

// SetMaintenance stores the maintenance toggle and refreshes the cache.
func (s *AdminService) SetMaintenance(ctx context.Context, actor Actor, m domain.MaintenanceSetting) error {
	setting, err := marshalSetting(domain.SettingKeyMaintenance, m)
	if err != nil {
		return err
	}

	if err := s.settingRepo.Set(ctx, setting); err != nil {
		return fmt.Errorf("set maintenance setting: %w", err)
	}

	if err := s.settingsCache.SetMaintenance(ctx, &m); err != nil {
		s.logger.WarnContext(ctx, "failed to cache maintenance setting", slog.String("error", err.Error()))
	}

	s.audit(ctx, actor, audit.ActionMaintenance, map[string]any{"enabled": m.Enabled, "message": m.Message})

	return nil
}

// ClearCache flushes the Redis cache database.
func (s *AdminService) ClearCache(ctx context.Context, actor Actor) error {
	if err := s.settingsCache.Flush(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	s.audit(ctx, actor, audit.ActionCacheCleared, nil)

	return nil
}

// --- Observability, audit, export ---

// Metrics returns a runtime and database pool snapshot.
func (s *AdminService) Metrics(ctx context.Context) (*SystemMetrics, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m := &SystemMetrics{
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		NumCPU:         runtime.NumCPU(),
	}
	if s.poolStats != nil {
		m.DB = s.poolStats()
	}

	return m, nil
}

// AuditLogs returns audit records matching the filter.
func (s *AdminService) AuditLogs(ctx context.Context, filter repository.AuditLogFilter) ([]domain.AuditLog, int, error) {
	entries, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, total, nil
}

// Leaderboard returns every leaderboard entry, including hidden ones.
func (s *AdminService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, err := s.leaderboardRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return entries, nil
}

// Export produces a full data snapshot.
func (s *AdminService) Export(ctx context.Context, actor Actor) (*domain.ExportBundle, error) {
	bundle, err := s.exportRepo.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export data: %w", err)
	}

	s.audit(ctx, actor, audit.ActionDataExported, map[string]any{"users": len(bundle.Users)})

	return bundle, nil
}

// Import replaces all exportable data with the bundle's contents. Role sets
// are validated up front so a bad bundle is rejected before the wipe begins.
func (s *AdminService) Import(ctx context.Context, actor Actor, bundle *domain.ExportBundle) error {
	for i := range bundle.Users {
		roles, err := domain.ParseRoles(bundle.Users[i].Roles)
		if err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("user %s: %v", bundle.Users[i].ID, err))
		}
		bundle.Users[i].Roles = roles
	}

	if err := s.exportRepo.Import(ctx, bundle); err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	if err := s.settingsCache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate settings cache", slog.String("error", err.Error()))
	}

	s.audit(ctx, actor, audit.ActionDataImported, map[string]any{"users": len(bundle.Users)})

	return nil
}

func (s *AdminService) audit(ctx context.Context, actor Actor, action string, details any) {
	s.auditor.Record(ctx, audit.Entry{
		Action:    action,
		UserID:    actor.ID,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
		Details:   details,
	})
}

func marshalSetting(key string, v any) (*domain.Setting, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal setting %s: %w", key, err)
	}
	return &domain.Setting{Key: key, Value: data}, nil
}

func unmarshalSetting(s *domain.Setting, v any) error {
	if err := json.Unmarshal(s.Value, v); err != nil {
		return fmt.Errorf("unmarshal setting %s: %w", s.Key, err)
	}
	return nil
}

func excludeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
