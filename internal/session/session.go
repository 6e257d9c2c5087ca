// Package session implements the client-side session manager used to drive
// the API the way the browser frontend does: the access token lives only in
// memory, the refresh token in a pluggable store, and concurrent
// 401-triggered refreshes collapse into a single network call.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Viperzz6988/NurvioV5-admin/pkg/httpclient"
)

// TokenStore persists the refresh token between runs. Implementations must be
// safe for concurrent use.
type TokenStore interface {
	// Load returns the stored refresh token, or "" if none is stored.
	Load() (string, error)

	// Save stores the refresh token, replacing any previous value.
	Save(refreshToken string) error

	// Clear removes the stored refresh token. Clearing an empty store is a no-op.
	Clear() error
}

// MemoryStore is an in-memory TokenStore.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Load returns the stored refresh token.
func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save stores the refresh token.
func (s *MemoryStore) Save(refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = refreshToken
	return nil
}

// Clear removes the stored refresh token.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// refreshCall is one in-flight refresh shared by every caller that hit a 401
// while it was running.
type refreshCall struct {
	done chan struct{}
	err  error
}

// Session is an explicit session object owned by the caller; there is no
// package-level state. It attaches the current access token to outgoing
// requests and transparently refreshes it once per 401.
type Session struct {
	baseURL string
	client  *httpclient.Client
	store   TokenStore
	logger  *slog.Logger

	mu          sync.Mutex
	accessToken string
	inflight    *refreshCall
}

// Options configures a Session.
type Options struct {
	// BaseURL is the API origin, e.g. "http://localhost:8080".
	BaseURL string

	// Store holds the refresh token. Defaults to an in-memory store.
	Store TokenStore

	// Client is the underlying HTTP client. Defaults to a non-retrying client
	// so a refreshed request is never replayed more than once.
	Client *httpclient.Client

	Logger *slog.Logger
}

// New creates a session. If the store already holds a refresh token, one
// eager refresh runs to populate the access token; on failure the stored
// tokens are cleared and the session starts anonymous. New never fails for
// auth reasons.
func New(ctx context.Context, opts Options) *Session {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Client == nil {
		cfg := httpclient.DefaultConfig()
		cfg.MaxRetries = 0
		cfg.Timeout = 15 * time.Second
		opts.Client = httpclient.New(cfg)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		baseURL: opts.BaseURL,
		client:  opts.Client,
		store:   opts.Store,
		logger:  opts.Logger,
	}

	if stored, err := s.store.Load(); err == nil && stored != "" {
		if err := s.refresh(ctx); err != nil {
			s.logger.DebugContext(ctx, "startup refresh failed, starting anonymous",
				slog.String("error", err.Error()),
			)
		}
	}

	return s
}

// SetTokens installs a freshly issued token pair, e.g. after a login call.
func (s *Session) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	s.accessToken = accessToken
	s.mu.Unlock()
	return s.store.Save(refreshToken)
}

// AccessToken returns the current in-memory access token, or "" when anonymous.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Clear drops both tokens, leaving the session anonymous.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()
	return s.store.Clear()
}

// Do sends the request with the access token attached. On a 401 it refreshes
// the token (joining any refresh already in flight) and retries exactly once;
// a failure after the retry is returned to the caller as-is. Requests with a
// body must set GetBody (as http.NewRequest does) to be retryable.
func (s *Session) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	s.attach(req)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	stored, err := s.store.Load()
	if err != nil || stored == "" {
		return resp, nil
	}

	if err := s.refresh(ctx); err != nil {
		return resp, nil
	}

	retry, err := cloneRequest(ctx, req)
	if err != nil {
		return resp, nil
	}

	_ = resp.Body.Close()
	s.attach(retry)
	return s.client.Do(ctx, retry)
}

// attach sets the bearer header when an access token is present.
func (s *Session) attach(req *http.Request) {
	if token := s.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// refresh performs the single-flight token refresh. The first caller issues
// the network call; every concurrent caller blocks on the same result.
func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	if call := s.inflight; call != nil {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	s.inflight = call
	s.mu.Unlock()

	call.err = s.doRefresh(ctx)
	close(call.done)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()

	return call.err
}

// doRefresh exchanges the stored refresh token for a new pair. Any failure
// clears both tokens, leaving the session anonymous.
func (s *Session) doRefresh(ctx context.Context) error {
	stored, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}
	if stored == "" {
		return fmt.Errorf("no refresh token stored")
	}

	body, err := json.Marshal(map[string]string{"refreshToken": stored})
	if err != nil {
		return fmt.Errorf("marshal refresh request: %w", err)
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/auth/refresh", "application/json", bytes.NewReader(body))
	if err != nil {
		s.clearOnFailure(ctx)
		return fmt.Errorf("refresh request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		s.clearOnFailure(ctx)
		return fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		s.clearOnFailure(ctx)
		return fmt.Errorf("decode refresh response: %w", err)
	}

	return s.SetTokens(pair.AccessToken, pair.RefreshToken)
}

func (s *Session) clearOnFailure(ctx context.Context) {
	if err := s.Clear(); err != nil {
		s.logger.WarnContext(ctx, "failed to clear session tokens",
			slog.String("error", err.Error()),
		)
	}
}

// cloneRequest builds a replayable copy of req for the single retry.
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("reopen request body: %w", err)
	}
	clone.Body = io.NopCloser(body)
	return clone, nil
}
