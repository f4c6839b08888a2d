// Package identity implements backend.Identity over the admin_users and
// admin_sessions tables. Tokens are HS256 JWTs bound to a revocable session row.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOwnerExists       = errors.New("owner already registered")
	ErrWrongPassword     = errors.New("wrong password")
	ErrPasswordSameAsOld = errors.New("new password must differ from the old one")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrInvalidEmail      = errors.New("invalid email address")
)

const minPasswordLen = 8

// Options tune a Provider. Zero values select the defaults.
type Options struct {
	SessionTTL time.Duration
	BcryptCost int
}

// Provider is the table-backed identity provider.
type Provider struct {
	users    backend.Table[models.AdminUser]
	sessions backend.Table[models.AdminSession]
	signer   *jwt.Signer
	ttl      time.Duration
	cost     int
	now      func() time.Time

	// registerMu serializes Register within one process. Other processes
	// are caught by the post-insert owner check.
	registerMu sync.Mutex

	// dummyHash keeps unknown-email logins as slow as wrong-password ones.
	dummyHash []byte
}

var _ backend.Identity = (*Provider)(nil)

func New(users backend.Table[models.AdminUser], sessions backend.Table[models.AdminSession], signer *jwt.Signer, opts Options) *Provider {
	p := &Provider{
		users:    users,
		sessions: sessions,
		signer:   signer,
		ttl:      opts.SessionTTL,
		cost:     opts.BcryptCost,
		now:      time.Now,
	}
	if p.ttl <= 0 {
		p.ttl = 7 * 24 * time.Hour
	}
	if p.cost == 0 {
		p.cost = bcrypt.DefaultCost
	}
	p.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("folio-dummy-password"), p.cost)
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) findByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	rows, err := p.users.Select(ctx, backend.Query{Where: map[string]any{"email": email}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SignIn verifies the credentials and opens a new session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	u, err := p.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(password))
		return nil, backend.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, backend.ErrInvalidCredentials
	}

	client := backend.ClientFrom(ctx)
	now := p.now()
	sess := &models.AdminSession{
		UserID:    u.ID,
		IP:        strings.TrimSpace(client.IP),
		UA:        strings.TrimSpace(client.UserAgent),
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.sessions.Insert(ctx, sess); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	token, err := p.signer.Sign(u.ID, sess.ID, p.ttl)
	if err != nil {
		_ = p.sessions.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("sign in: %w", err)
	}

	_, _ = p.users.Update(ctx, u.ID, map[string]any{
		"last_login_at": now,
		"last_login_ip": sess.IP,
	})

	return &backend.Session{
		Token:     token,
		SessionID: sess.ID,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// GetSession resolves a token to its live session.
func (p *Provider) GetSession(ctx context.Context, token string) (*backend.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, backend.ErrNoSession
	}
	claims, err := p.signer.Parse(token)
	if err != nil {
		return nil, backend.ErrNoSession
	}

	sess, err := p.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, backend.ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != claims.UserID || !sess.Active(p.now()) {
		return nil, backend.ErrNoSession
	}

	u, err := p.users.Get(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, backend.ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &backend.Session{
		Token:     token,
		SessionID: sess.ID,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// SignOut revokes the session behind token.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.signer.Parse(token)
	if err != nil {
		return backend.ErrNoSession
	}
	now := p.now()
	if _, err := p.sessions.Update(ctx, claims.SessionID, map[string]any{"revoked_at": now}); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return backend.ErrNoSession
		}
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// HasOwner reports whether an admin account exists.
func (p *Provider) HasOwner(ctx context.Context) (bool, error) {
	rows, err := p.users.Select(ctx, backend.Query{Limit: 1})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Register creates the owner account. Only one owner may ever be registered.
// When two registrations race past the existence check, the earliest account
// wins and the later insert is removed again.
func (p *Provider) Register(ctx context.Context, email, password string) (*models.AdminUser, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	p.registerMu.Lock()
	defer p.registerMu.Unlock()

	exists, err := p.HasOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, ErrOwnerExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, err
	}
	u := &models.AdminUser{Email: email, PasswordHash: string(hash)}
	if err := p.users.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := p.keepEarliestOwner(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// keepEarliestOwner deletes the just-inserted account id unless it is the
// oldest admin row.
func (p *Provider) keepEarliestOwner(ctx context.Context, id string) error {
	rows, err := p.users.Select(ctx, backend.Query{Order: backend.Order{Column: "created_at"}, Limit: 2})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if len(rows) < 2 || rows[0].ID == id {
		return nil
	}
	if err := p.users.Delete(ctx, id); err != nil && !errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("register: roll back duplicate owner: %w", err)
	}
	return ErrOwnerExists
}

// ChangePassword replaces the owner's password and revokes every other session.
func (p *Provider) ChangePassword(ctx context.Context, userID, keepSessionID, oldPwd, newPwd string) error {
	u, err := p.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPwd)); err != nil {
		return ErrWrongPassword
	}
	if len(newPwd) < minPasswordLen {
		return ErrWeakPassword
	}
	if oldPwd == newPwd {
		return ErrPasswordSameAsOld
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), p.cost)
	if err != nil {
		return err
	}
	if _, err := p.users.Update(ctx, userID, map[string]any{"password_hash": string(hash)}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	sessions, err := p.sessions.Select(ctx, backend.Query{Where: map[string]any{"user_id": userID}})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	now := p.now()
	for _, s := range sessions {
		if s.ID == keepSessionID || s.RevokedAt != nil {
			continue
		}
		if _, err := p.sessions.Update(ctx, s.ID, map[string]any{"revoked_at": now}); err != nil {
			return fmt.Errorf("change password: %w", err)
		}
	}
	return nil
}

// CleanupExpired deletes sessions that are expired or revoked and returns
// how many were removed.
func (p *Provider) CleanupExpired(ctx context.Context) (int, error) {
	sessions, err := p.sessions.Select(ctx, backend.Query{})
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	now := p.now()
	removed := 0
	for _, s := range sessions {
		if s.Active(now) {
			continue
		}
		if err := p.sessions.Delete(ctx, s.ID); err != nil && !errors.Is(err, backend.ErrNotFound) {
			return removed, fmt.Errorf("cleanup sessions: %w", err)
		}
		removed++
	}
	return removed, nil
}
