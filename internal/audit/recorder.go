package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/event"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
)

// Action constants for audit records.
const (
	ActionLogin        = "auth.login"
	ActionLoginFailed  = "auth.login.failed"
	ActionLogout       = "auth.logout"
	ActionUserCreated  = "admin.user.created"
	ActionUserUpdated  = "admin.user.updated"
	ActionUserDeleted  = "admin.user.deleted"
	ActionBulkDelete   = "admin.users.bulk_delete"
	ActionBulkRole     = "admin.users.bulk_role"
	ActionBulkBan      = "admin.users.bulk_ban"
	ActionFlagToggled  = "admin.feature_flag.toggled"
	ActionMaintenance  = "admin.maintenance.toggled"
	ActionCacheCleared = "admin.cache.cleared"
	ActionDataExported = "admin.data.exported"
	ActionDataImported = "admin.data.imported"
)

// Entry describes one auditable action.
type Entry struct {
	Action    string
	UserID    string
	IP        string
	UserAgent string
	Details   any
}

// Recorder persists audit entries and mirrors them onto the event bus.
// Recording is best-effort: failures are logged and swallowed so an audit
// outage can never fail the request being audited.
type Recorder struct {
	repo     repository.AuditLogRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewRecorder creates an audit recorder. The producer may be nil, in which
// case entries are only written to the store.
func NewRecorder(repo repository.AuditLogRepository, producer *event.Producer, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// Record writes one audit entry. It never returns an error.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	var details json.RawMessage
	if e.Details != nil {
		data, err := json.Marshal(e.Details)
		if err != nil {
			r.logger.WarnContext(ctx, "audit details not serializable",
				slog.String("action", e.Action),
				slog.String("error", err.Error()),
			)
		} else {
			details = data
		}
	}

	var userID *string
	if e.UserID != "" && e.UserID != domain.GuestSubjectID {
		userID = &e.UserID
	}

	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		Action:    e.Action,
		UserID:    userID,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to write audit log",
			slog.String("action", e.Action),
			slog.String("error", err.Error()),
		)
	}

	if r.producer == nil {
		return
	}

	data := event.AuditRecordedData{
		ID:        entry.ID,
		Action:    entry.Action,
		UserID:    e.UserID,
		IP:        entry.IP,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.producer.PublishAuditRecorded(ctx, data); err != nil {
		r.logger.ErrorContext(ctx, "failed to publish audit event",
			slog.String("action", e.Action),
			slog.String("error", err.Error()),
		)
	}
}
