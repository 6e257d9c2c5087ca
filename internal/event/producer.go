package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/Viperzz6988/NurvioV5-admin/pkg/kafka"
)

// Kafka topic constants for admin panel events.
const (
	TopicAuditRecorded    = "nurvio.audit.recorded"
	TopicContactSubmitted = "nurvio.contact.submitted"
)

// Aggregate type constants.
const (
	AggregateTypeAudit   = "audit"
	AggregateTypeContact = "contact"
)

// Source identifier for events originating from this service.
const SourceAdminBackend = "admin-backend"

// AuditRecordedData is the payload for an audit.recorded event.
type AuditRecordedData struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	IP        string          `json:"ip,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ContactSubmittedData is the payload for a contact.submitted event. The
// external mailer consumes this topic; no email leaves this service directly.
type ContactSubmittedData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	IP      string `json:"ip,omitempty"`
}

// Producer publishes admin panel events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAuditRecorded publishes an audit.recorded event.
func (p *Producer) PublishAuditRecorded(ctx context.Context, data AuditRecordedData) error {
	event, err := pkgkafka.NewEvent(TopicAuditRecorded, data.ID, AggregateTypeAudit, SourceAdminBackend, data)
	if err != nil {
		return fmt.Errorf("create audit.recorded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicAuditRecorded, event); err != nil {
		return fmt.Errorf("publish audit.recorded event: %w", err)
	}

	return nil
}

// PublishContactSubmitted publishes a contact.submitted event.
func (p *Producer) PublishContactSubmitted(ctx context.Context, id string, data ContactSubmittedData) error {
	event, err := pkgkafka.NewEvent(TopicContactSubmitted, id, AggregateTypeContact, SourceAdminBackend, data)
	if err != nil {
		return fmt.Errorf("create contact.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicContactSubmitted, event); err != nil {
		return fmt.Errorf("publish contact.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published contact.submitted event",
		slog.String("contact_id", id),
	)

	return nil
}
