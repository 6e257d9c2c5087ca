package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/event"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
)

// defaultLeaderboardLimit caps the public leaderboard size.
const defaultLeaderboardLimit = 100

// PublicService implements the unauthenticated surface: the leaderboard and
// the contact form.
type PublicService struct {
	leaderboardRepo repository.LeaderboardRepository
	producer        *event.Producer
	logger          *slog.Logger
}

// NewPublicService creates a new public service.
func NewPublicService(leaderboardRepo repository.LeaderboardRepository, producer *event.Producer, logger *slog.Logger) *PublicService {
	return &PublicService{
		leaderboardRepo: leaderboardRepo,
		producer:        producer,
		logger:          logger,
	}
}

// Leaderboard returns the public leaderboard: hidden entries and entries
// owned by guest-role users are excluded, ordered by score descending.
func (s *PublicService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > defaultLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}

	entries, err := s.leaderboardRepo.ListVisible(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list visible leaderboard: %w", err)
	}

	return entries, nil
}

// ContactInput holds a validated contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	IP      string
}

// SubmitContact publishes the submission for the external mailer. Delivery is
// the consumer's concern; this service only guarantees the event is on the bus.
func (s *PublicService) SubmitContact(ctx context.Context, input ContactInput) error {
	id := uuid.New().String()
	data := event.ContactSubmittedData{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
		IP:      input.IP,
	}

	if err := s.producer.PublishContactSubmitted(ctx, id, data); err != nil {
		return fmt.Errorf("submit contact form: %w", err)
	}

	s.logger.InfoContext(ctx, "contact form submitted",
		slog.String("contact_id", id),
	)

	return nil
}
