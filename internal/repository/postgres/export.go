package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/database"
)

// ExportRepository implements repository.ExportRepository using PostgreSQL.
type ExportRepository struct {
	db database.DBTX
}

// NewExportRepository creates a new PostgreSQL-backed export repository.
func NewExportRepository(db database.DBTX) *ExportRepository {
	return &ExportRepository{db: db}
}

// Export reads all exportable tables into a bundle.
func (r *ExportRepository) Export(ctx context.Context) (*domain.ExportBundle, error) {
	bundle := &domain.ExportBundle{ExportedAt: time.Now().UTC()}

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	for rows.Next() {
		var u domain.User
		if err := scanUserRow(rows, &u); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan exported user: %w", err)
		}
		bundle.Users = append(bundle.Users, domain.ExportUser{User: u, PasswordHash: u.PasswordHash})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exported users: %w", err)
	}

	flags, err := NewFeatureFlagRepository(r.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export feature flags: %w", err)
	}
	bundle.Flags = flags

	settings, err := NewSettingRepository(r.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	bundle.Settings = settings

	leaderboard, err := NewLeaderboardRepository(r.db).ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export leaderboard: %w", err)
	}
	bundle.Leaderboard = leaderboard

	return bundle, nil
}

// Import wipes and recreates all exportable tables from the bundle inside a
// single transaction. Audit logs are deliberately preserved; refresh tokens
// are wiped because their owners are recreated.
func (r *ExportRepository) Import(ctx context.Context, bundle *domain.ExportBundle) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range []string{"refresh_tokens", "leaderboard_entries", "users", "feature_flags", "settings"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}

	for i := range bundle.Users {
		u := &bundle.Users[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, username, password_hash, roles, is_banned, last_login_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID, u.Email, u.Username, u.PasswordHash, u.Roles, u.IsBanned, u.LastLoginAt, u.CreatedAt, u.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("import user %s: %w", u.ID, err)
		}
	}

	for _, f := range bundle.Flags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO feature_flags (key, enabled, updated_at) VALUES ($1, $2, $3)`,
			f.Key, f.Enabled, f.UpdatedAt,
		); err != nil {
			return fmt.Errorf("import feature flag %s: %w", f.Key, err)
		}
	}

	for _, s := range bundle.Settings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO settings (key, value) VALUES ($1, $2)`,
			s.Key, s.Value,
		); err != nil {
			return fmt.Errorf("import setting %s: %w", s.Key, err)
		}
	}

	for _, e := range bundle.Leaderboard {
		if _, err := tx.Exec(ctx,
			`INSERT INTO leaderboard_entries (id, user_id, score, hidden, created_at) VALUES ($1, $2, $3, $4, $5)`,
			e.ID, e.UserID, e.Score, e.Hidden, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("import leaderboard entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}

	return nil
}
