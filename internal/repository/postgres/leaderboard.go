package postgres

import (
	"context"
	"fmt"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/database"
)

// LeaderboardRepository implements repository.LeaderboardRepository using PostgreSQL.
type LeaderboardRepository struct {
	db database.DBTX
}

// NewLeaderboardRepository creates a new PostgreSQL-backed leaderboard repository.
func NewLeaderboardRepository(db database.DBTX) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// ListVisible returns entries ordered by score descending, excluding hidden
// entries and entries whose owner only has the guest role.
func (r *LeaderboardRepository) ListVisible(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT le.id, le.user_id, u.username, le.score, le.hidden, le.created_at
		FROM leaderboard_entries le
		JOIN users u ON u.id = le.user_id
		WHERE le.hidden = FALSE AND NOT ($1 = ANY(u.roles))
		ORDER BY le.score DESC
		LIMIT $2`

	return r.list(ctx, query, domain.RoleGuest, limit)
}

// ListAll returns every entry, including hidden ones, for the admin view.
func (r *LeaderboardRepository) ListAll(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT le.id, le.user_id, u.username, le.score, le.hidden, le.created_at
		FROM leaderboard_entries le
		JOIN users u ON u.id = le.user_id
		ORDER BY le.score DESC`

	return r.list(ctx, query)
}

func (r *LeaderboardRepository) list(ctx context.Context, query string, args ...any) ([]domain.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Score, &e.Hidden, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard entries: %w", err)
	}

	return entries, nil
}
