package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Viperzz6988/NurvioV5-admin/internal/audit"
	"github.com/Viperzz6988/NurvioV5-admin/internal/domain"
	"github.com/Viperzz6988/NurvioV5-admin/internal/repository"
	"github.com/Viperzz6988/NurvioV5-admin/internal/token"
	apperrors "github.com/Viperzz6988/NurvioV5-admin/pkg/errors"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) BulkDelete(ctx context.Context, ids []string) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) BulkSetRoles(ctx context.Context, ids []string, roles []string) (int, error) {
	args := m.Called(ctx, ids, roles)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) BulkSetBanned(ctx context.Context, ids []string, banned bool) (int, error) {
	args := m.Called(ctx, ids, banned)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) TouchLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) ListActiveByUserID(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock Audit Log Repository ---

type mockAuditLogRepository struct {
	mock.Mock
}

func (m *mockAuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditLogRepository) List(ctx context.Context, filter repository.AuditLogFilter) ([]domain.AuditLog, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AuditLog), args.Int(1), args.Error(2)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCodec() *token.Codec {
	return token.NewCodec(
		"test-access-secret-key-for-testing",
		"test-refresh-secret-key-for-testing",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func newTestAuditor(auditRepo *mockAuditLogRepository) *audit.Recorder {
	return audit.NewRecorder(auditRepo, nil, newTestLogger())
}

func newTestAuthService(
	userRepo *mockUserRepository,
	refreshTokenRepo *mockRefreshTokenRepository,
	auditRepo *mockAuditLogRepository,
) *AuthService {
	return NewAuthService(userRepo, refreshTokenRepo, newTestCodec(), newTestAuditor(auditRepo), newTestLogger())
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}

func testUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Email:        "viper@example.com",
		Username:     "viper",
		PasswordHash: hashForTest("CorrectHorse1"),
		Roles:        []string{domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func strPtr(s string) *string {
	return &s
}

// --- Authenticate Tests ---

func TestAuthenticate_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	userRepo.On("FindByIdentifier", ctx, "viper").Return(user, nil)
	userRepo.On("TouchLastLogin", ctx, user.ID).Return(nil)
	refreshTokenRepo.On("Create", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	got, tokens, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "viper", Password: "CorrectHorse1"})

	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, tokens)
	assert.Equal(t, user.ID, got.ID)

	// The issued access token must carry the user's identity and roles.
	claims, err := newTestCodec().VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, user.Roles, claims.Roles)

	userRepo.AssertExpectations(t)
	refreshTokenRepo.AssertExpectations(t)
}

func TestAuthenticate_UnknownIdentifier(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	userRepo.On("FindByIdentifier", ctx, "nobody").Return(nil, apperrors.NotFound("user", "nobody"))
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	_, _, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "nobody", Password: "whatever1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	userRepo.On("FindByIdentifier", ctx, "viper").Return(testUser(), nil)
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	_, _, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "viper", Password: "WrongPassword"})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
	refreshTokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthenticate_BannedWithCorrectPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	banned := testUser()
	banned.IsBanned = true
	userRepo.On("FindByIdentifier", ctx, "viper").Return(banned, nil)
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	_, _, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "viper", Password: "CorrectHorse1"})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ACCOUNT_BANNED", appErr.Code)
}

func TestAuthenticate_BannedWithWrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	banned := testUser()
	banned.IsBanned = true
	userRepo.On("FindByIdentifier", ctx, "viper").Return(banned, nil)
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	_, _, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "viper", Password: "WrongPassword"})

	// A wrong password on a banned account must not reveal the ban.
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	_, _, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = svc.Authenticate(ctx, AuthenticateInput{Identifier: "viper", Password: ""})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	userRepo.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
}

func TestAuthenticate_LastLoginFailureDoesNotFailLogin(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	userRepo.On("FindByIdentifier", ctx, "viper").Return(user, nil)
	userRepo.On("TouchLastLogin", ctx, user.ID).Return(assert.AnError)
	refreshTokenRepo.On("Create", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	_, tokens, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: "viper", Password: "CorrectHorse1"})

	require.NoError(t, err)
	assert.NotNil(t, tokens)
}

// --- Refresh Tests ---

// issueStoredRefresh issues a refresh token via the service and captures the
// hash it stored, so tests can feed it back through ListActiveByUserID.
func issueStoredRefresh(t *testing.T, svc *AuthService, userRepo *mockUserRepository, refreshTokenRepo *mockRefreshTokenRepository, auditRepo *mockAuditLogRepository, user *domain.User) (string, domain.RefreshToken) {
	t.Helper()
	ctx := context.Background()

	var stored domain.RefreshToken
	userRepo.On("FindByIdentifier", ctx, user.Username).Return(user, nil).Once()
	userRepo.On("TouchLastLogin", ctx, user.ID).Return(nil).Once()
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)
	refreshTokenRepo.On("Create", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			stored = domain.RefreshToken{
				ID:        "token-1",
				UserID:    args.String(1),
				TokenHash: args.String(2),
				ExpiresAt: args.Get(3).(time.Time),
				CreatedAt: time.Now().UTC(),
			}
		}).
		Return(nil).Once()

	_, tokens, err := svc.Authenticate(ctx, AuthenticateInput{Identifier: user.Username, Password: "CorrectHorse1"})
	require.NoError(t, err)

	return tokens.RefreshToken, stored
}

func TestRefresh_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	refreshToken, stored := issueStoredRefresh(t, svc, userRepo, refreshTokenRepo, auditRepo, user)

	// Roles changed since issuance; the new pair must carry the current set.
	updated := testUser()
	updated.Roles = []string{domain.RoleSuperAdmin}

	refreshTokenRepo.On("ListActiveByUserID", ctx, user.ID).Return([]domain.RefreshToken{stored}, nil)
	userRepo.On("GetByID", ctx, user.ID).Return(updated, nil)
	refreshTokenRepo.On("Create", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	tokens, err := svc.Refresh(ctx, refreshToken)

	require.NoError(t, err)
	require.NotNil(t, tokens)

	claims, err := newTestCodec().VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleSuperAdmin}, claims.Roles)

	// Rotation must not revoke the redeemed token.
	refreshTokenRepo.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
}

func TestRefresh_EmptyToken(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockRefreshTokenRepository), new(mockAuditLogRepository))

	_, err := svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRefresh_GarbageToken(t *testing.T) {
	refreshTokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(new(mockUserRepository), refreshTokenRepo, new(mockAuditLogRepository))

	_, err := svc.Refresh(context.Background(), "not-a-jwt")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
	refreshTokenRepo.AssertNotCalled(t, "ListActiveByUserID", mock.Anything, mock.Anything)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockRefreshTokenRepository), new(mockAuditLogRepository))

	access, err := newTestCodec().IssueAccess("user-123", []string{domain.RoleUser})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
}

func TestRefresh_GuestTokenRejected(t *testing.T) {
	refreshTokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(new(mockUserRepository), refreshTokenRepo, new(mockAuditLogRepository))
	ctx := context.Background()

	tokens, err := svc.GuestLogin(ctx)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, tokens.RefreshToken)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
	// The guest sentinel must be rejected before any store lookup.
	refreshTokenRepo.AssertNotCalled(t, "ListActiveByUserID", mock.Anything, mock.Anything)
}

func TestRefresh_NoStoredMatch(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	refreshToken, _ := issueStoredRefresh(t, svc, userRepo, refreshTokenRepo, auditRepo, user)

	// All tokens were revoked (e.g. by logout) since issuance.
	refreshTokenRepo.On("ListActiveByUserID", ctx, user.ID).Return([]domain.RefreshToken{}, nil)

	_, err := svc.Refresh(ctx, refreshToken)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRefresh_ExpiredStoredTokenRejected(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	refreshToken, stored := issueStoredRefresh(t, svc, userRepo, refreshTokenRepo, auditRepo, user)

	// The stored row expired even though the JWT itself would still verify.
	stored.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	refreshTokenRepo.On("ListActiveByUserID", ctx, user.ID).Return([]domain.RefreshToken{stored}, nil)

	_, err := svc.Refresh(ctx, refreshToken)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
}

func TestRefresh_RevokedStoredTokenRejected(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	refreshToken, stored := issueStoredRefresh(t, svc, userRepo, refreshTokenRepo, auditRepo, user)

	// Revocation landed between the list read and the comparison.
	revokedAt := time.Now().UTC()
	stored.RevokedAt = &revokedAt
	refreshTokenRepo.On("ListActiveByUserID", ctx, user.ID).Return([]domain.RefreshToken{stored}, nil)

	_, err := svc.Refresh(ctx, refreshToken)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
}

func TestRefresh_UserDeletedSinceIssuance(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	user := testUser()
	refreshToken, stored := issueStoredRefresh(t, svc, userRepo, refreshTokenRepo, auditRepo, user)

	refreshTokenRepo.On("ListActiveByUserID", ctx, user.ID).Return([]domain.RefreshToken{stored}, nil)
	userRepo.On("GetByID", ctx, user.ID).Return(nil, apperrors.NotFound("user", user.ID))

	_, err := svc.Refresh(ctx, refreshToken)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Code)
}

// --- Logout Tests ---

func TestLogout_RevokesAllTokens(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	auditRepo := new(mockAuditLogRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, auditRepo)
	ctx := context.Background()

	refreshTokenRepo.On("RevokeAllForUser", ctx, "user-123").Return(nil)
	auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	err := svc.Logout(ctx, "user-123")

	require.NoError(t, err)
	refreshTokenRepo.AssertExpectations(t)
}

func TestLogout_GuestIsNoOp(t *testing.T) {
	refreshTokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(new(mockUserRepository), refreshTokenRepo, new(mockAuditLogRepository))

	err := svc.Logout(context.Background(), domain.GuestSubjectID)

	require.NoError(t, err)
	refreshTokenRepo.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
}

// --- Guest Login Tests ---

func TestGuestLogin_IssuesGuestTokensWithoutStoreWrites(t *testing.T) {
	userRepo := new(mockUserRepository)
	refreshTokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, refreshTokenRepo, new(mockAuditLogRepository))
	ctx := context.Background()

	tokens, err := svc.GuestLogin(ctx)

	require.NoError(t, err)
	require.NotNil(t, tokens)

	claims, err := newTestCodec().VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.GuestSubjectID, claims.SubjectID)
	assert.Equal(t, []string{domain.RoleGuest}, claims.Roles)

	refreshTokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
}

// --- Me Tests ---

func TestMe_Guest(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockRefreshTokenRepository), new(mockAuditLogRepository))

	user, err := svc.Me(context.Background(), domain.GuestSubjectID)

	require.NoError(t, err)
	assert.Equal(t, domain.GuestSubjectID, user.ID)
	assert.Equal(t, []string{domain.RoleGuest}, user.Roles)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestMe_Found(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockRefreshTokenRepository), new(mockAuditLogRepository))
	ctx := context.Background()

	user := testUser()
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := svc.Me(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
}

func TestMe_DeletedUser(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockRefreshTokenRepository), new(mockAuditLogRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "gone").Return(nil, apperrors.NotFound("user", "gone"))

	_, err := svc.Me(ctx, "gone")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
