// Package auth holds the per-request admin authentication state and the gin
// middleware that builds it.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/folio-space/folio/internal/backend"
	"go.uber.org/zap"
)

// State is the authentication context of one request. It starts loading,
// settles after Init, and changes only through Login and Logout.
type State struct {
	identity backend.Identity
	logger   *zap.Logger

	mu            sync.RWMutex
	authenticated bool
	loading       bool
	session       *backend.Session
}

func NewState(identity backend.Identity, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{identity: identity, logger: logger, loading: true}
}

// Init resolves token against the identity provider. Any failure leaves the
// state unauthenticated.
func (s *State) Init(ctx context.Context, token string) {
	var sess *backend.Session
	if token != "" {
		var err error
		sess, err = s.identity.GetSession(ctx, token)
		if err != nil && !errors.Is(err, backend.ErrNoSession) {
			s.logger.Warn("session lookup failed", zap.Error(err))
		}
		if err != nil {
			sess = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.authenticated = sess != nil
	s.loading = false
}

func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Session returns the active session, or nil.
func (s *State) Session() *backend.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the token of the active session, or "".
func (s *State) Token() string {
	if sess := s.Session(); sess != nil {
		return sess.Token
	}
	return ""
}

// Login forwards the credentials. It reports success; on any error the
// state is left exactly as it was.
func (s *State) Login(ctx context.Context, email, password string) bool {
	sess, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		if !errors.Is(err, backend.ErrInvalidCredentials) {
			s.logger.Error("sign in failed", zap.Error(err))
		}
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.authenticated = true
	s.loading = false
	return true
}

// Logout signs out at the provider and clears the state whatever the
// provider answers.
func (s *State) Logout(ctx context.Context) {
	if token := s.Token(); token != "" {
		if err := s.identity.SignOut(ctx, token); err != nil {
			s.logger.Warn("sign out failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.authenticated = false
}
