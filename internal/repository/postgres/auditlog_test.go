package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
	"github.com/Viperzz6988/NurvioV5-admin/pkg/database"
)

func newAuditLogTestFixture(t *testing.T) (*AuditLogRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewAuditLogRepository(mock)
	return repo, mock
}

func auditLogColumns() []string {
	return []string{"id", "action", "user_id", "ip", "user_agent", "details", "created_at"}
}

func TestAuditLogRepository_Create(t *testing.T) {
	repo, mock := newAuditLogTestFixture(t)
	defer mock.Close()

	userID := "user-1"
	entry := &domain.AuditLog{
		ID:        "log-1",
		Action:    "auth.login",
		UserID:    &userID,
		IP:        "203.0.113.9",
		UserAgent: "curl/8.0",
		Details:   json.RawMessage(`{"note":"ok"}`),
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, entry.Action, entry.UserID, entry.IP, entry.UserAgent, entry.Details, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_Create_AnonymousActor(t *testing.T) {
	repo, mock := newAuditLogTestFixture(t)
	defer mock.Close()

	entry := &domain.AuditLog{
		ID:        "log-2",
		Action:    "auth.login.failed",
		UserID:    nil,
		IP:        "203.0.113.9",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, entry.Action, entry.UserID, entry.IP, entry.UserAgent, entry.Details, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_List_NoFilter(t *testing.T) {
	repo, mock := newAuditLogTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "user-1"

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_logs").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM audit_logs ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows(auditLogColumns()).
			AddRow("log-1", "auth.login", &userID, "203.0.113.9", "curl/8.0", json.RawMessage(`{}`), now))

	entries, total, err := repo.List(context.Background(), repository.AuditLogFilter{Take: 50})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "auth.login", entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_List_WithFilters(t *testing.T) {
	repo, mock := newAuditLogTestFixture(t)
	defer mock.Close()

	from := time.Now().UTC().Add(-24 * time.Hour)
	to := time.Now().UTC()
	filter := repository.AuditLogFilter{
		UserID: "user-1",
		Action: "auth.login",
		From:   &from,
		To:     &to,
		Skip:   0,
		Take:   25,
	}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_logs WHERE").
		WithArgs("user-1", "auth.login", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM audit_logs WHERE (.+) LIMIT \\$5 OFFSET \\$6").
		WithArgs("user-1", "auth.login", from, to, 25, 0).
		WillReturnRows(pgxmock.NewRows(auditLogColumns()))

	entries, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
