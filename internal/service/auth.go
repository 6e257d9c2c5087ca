package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Viperzz6988/NurvioV5-admin/internal/audit"
	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
	"github.com/Viperzz6988/NurvioV5-admin/internal/token"
	apperrors "github.com/Viperzz6988/NurvioV5-admin/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// invalidCredentials deliberately collapses "no such user" and "wrong
// password" into one outcome so the response never signals account existence.
func invalidCredentials() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid credentials",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
}

func accountBanned() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "ACCOUNT_BANNED",
		Message: "account is banned",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
}

func invalidRefreshToken() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "INVALID_REFRESH_TOKEN",
		Message: "invalid or expired refresh token",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
}

// AuthService implements the login/refresh/logout/guest state machine.
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	codec            *token.Codec
	auditor          *audit.Recorder
	logger           *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	codec *token.Codec,
	auditor *audit.Recorder,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		codec:            codec,
		auditor:          auditor,
		logger:           logger,
	}
}

// AuthenticateInput holds the parameters for a login attempt. IP and
// UserAgent only feed the audit trail.
type AuthenticateInput struct {
	Identifier string
	Password   string
	IP         string
	UserAgent  string
}

// Authenticate verifies credentials and issues a fresh token pair.
// Lookup is an exact email-or-username match. Banned accounts are rejected
// after the password check so a wrong password on a banned account still
// reads as invalid credentials.
func (s *AuthService) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, *domain.TokenPair, error) {
	if input.Identifier == "" {
		return nil, nil, apperrors.InvalidInput("identifier is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.FindByIdentifier(ctx, input.Identifier)
	if err != nil {
		s.auditor.Record(ctx, audit.Entry{
			Action:    audit.ActionLoginFailed,
			IP:        input.IP,
			UserAgent: input.UserAgent,
			Details:   map[string]string{"identifier": input.Identifier, "reason": "unknown identifier"},
		})
		return nil, nil, invalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.auditor.Record(ctx, audit.Entry{
			Action:    audit.ActionLoginFailed,
			UserID:    user.ID,
			IP:        input.IP,
			UserAgent: input.UserAgent,
			Details:   map[string]string{"reason": "wrong password"},
		})
		return nil, nil, invalidCredentials()
	}

	if user.IsBanned {
		s.auditor.Record(ctx, audit.Entry{
			Action:    audit.ActionLoginFailed,
			UserID:    user.ID,
			IP:        input.IP,
			UserAgent: input.UserAgent,
			Details:   map[string]string{"reason": "banned"},
		})
		return nil, nil, accountBanned()
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Roles)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to update last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:    audit.ActionLogin,
		UserID:    user.ID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	})

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, tokens, nil
}

// Refresh rotates a refresh token into a new token pair.
//
// The presented token's hash is compared against the subject's active stored
// hashes in a linear scan; revocation and expiry are re-checked per candidate
// at comparison time so a token revoked by a racing logout cannot slip
// through on a stale read. The redeemed token itself is not revoked: rotation
// adds a credential and relies on natural expiry to retire the old one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, invalidRefreshToken()
	}

	// Guest tokens are issued without a store record and cannot be rotated.
	if claims.SubjectID == domain.GuestSubjectID {
		return nil, invalidRefreshToken()
	}

	candidates, err := s.refreshTokenRepo.ListActiveByUserID(ctx, claims.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}

	presentedHash := hashToken(refreshToken)
	now := time.Now().UTC()
	matched := false
	for i := range candidates {
		if candidates[i].TokenHash == presentedHash && candidates[i].Active(now) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, invalidRefreshToken()
	}

	// Re-fetch the user so role changes since issuance take effect; the
	// token's role claims only identify the subject.
	user, err := s.userRepo.GetByID(ctx, claims.SubjectID)
	if err != nil {
		return nil, invalidRefreshToken()
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return tokens, nil
}

// Logout revokes all of the user's active refresh tokens. Idempotent;
// already-issued access tokens ride out their natural expiry. Guest subjects
// have no stored tokens, so logout is a no-op for them.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == domain.GuestSubjectID {
		return nil
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action: audit.ActionLogout,
		UserID: userID,
	})

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
	)

	return nil
}

// GuestLogin issues a token pair for the guest sentinel identity without any
// store write. Guest sessions are stateless and unrevocable; they expire with
// the tokens themselves.
func (s *AuthService) GuestLogin(ctx context.Context) (*domain.TokenPair, error) {
	roles := []string{domain.RoleGuest}

	accessToken, err := s.codec.IssueAccess(domain.GuestSubjectID, roles)
	if err != nil {
		return nil, fmt.Errorf("issue guest access token: %w", err)
	}

	refreshToken, err := s.codec.IssueRefresh(domain.GuestSubjectID, roles)
	if err != nil {
		return nil, fmt.Errorf("issue guest refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "guest session issued")

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Me resolves the authenticated subject to a user record. Guest subjects get
// the sentinel guest user; a deleted user row surfaces as NotFound.
func (s *AuthService) Me(ctx context.Context, subjectID string) (*domain.User, error) {
	if subjectID == domain.GuestSubjectID {
		return domain.GuestUser(), nil
	}

	user, err := s.userRepo.GetByID(ctx, subjectID)
	if err != nil {
		return nil, apperrors.NotFound("user", subjectID)
	}

	return user, nil
}

// generateTokenPair issues both tokens and persists the refresh token's hash,
// with the expiry read back out of the signed token's own claims.
func (s *AuthService) generateTokenPair(ctx context.Context, subjectID string, roles []string) (*domain.TokenPair, error) {
	accessToken, err := s.codec.IssueAccess(subjectID, roles)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.codec.IssueRefresh(subjectID, roles)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("extract refresh token expiry: %w", err)
	}

	if err := s.refreshTokenRepo.Create(ctx, subjectID, hashToken(refreshToken), claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// hashToken returns the hex-encoded SHA-256 hash of a token string.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
