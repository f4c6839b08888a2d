// Package account serves sign-in, sign-out and owner account management.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/folio-space/folio/internal/auth"
	"github.com/folio-space/folio/internal/backend/identity"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Accounts manages the owner account. *identity.Provider implements it.
type Accounts interface {
	HasOwner(ctx context.Context) (bool, error)
	Register(ctx context.Context, email, password string) (*models.AdminUser, error)
	ChangePassword(ctx context.Context, userID, keepSessionID, oldPwd, newPwd string) error
}

type Handler struct {
	accounts     Accounts
	secureCookie bool
	logger       *zap.Logger
}

func NewHandler(accounts Accounts, secureCookie bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{accounts: accounts, secureCookie: secureCookie, logger: logger}
}

func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	g := public.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/session", h.session)
	g.POST("/register", h.register)

	admin.PATCH("/auth/password", h.changePassword)
}

type credentialsDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	// SetupRequired is true until the owner account exists.
	SetupRequired bool `json:"setup_required"`
}

func (h *Handler) login(c *gin.Context) {
	var dto credentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}
	state := auth.FromContext(c)
	if !state.Login(c.Request.Context(), dto.Email, dto.Password) {
		response.UnauthorizedMsg(c, "invalid email or password")
		return
	}
	sess := state.Session()
	auth.SetCookie(c, sess, h.secureCookie)
	response.OK(c, tokenResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
}

func (h *Handler) logout(c *gin.Context) {
	auth.FromContext(c).Logout(c.Request.Context())
	auth.ClearCookie(c, h.secureCookie)
	response.NoContent(c)
}

func (h *Handler) session(c *gin.Context) {
	state := auth.FromContext(c)
	out := sessionResponse{Authenticated: state.Authenticated()}
	if sess := state.Session(); sess != nil {
		out.Email = sess.Email
		exp := sess.ExpiresAt
		out.ExpiresAt = &exp
	}
	if !out.Authenticated {
		has, err := h.accounts.HasOwner(c.Request.Context())
		if err != nil {
			h.logger.Warn("owner lookup failed", zap.Error(err))
		}
		out.SetupRequired = err == nil && !has
	}
	response.OK(c, out)
}

func (h *Handler) register(c *gin.Context) {
	var dto credentialsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}
	u, err := h.accounts.Register(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"id": u.ID, "email": u.Email})
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto changePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "old_password and new_password are required")
		return
	}
	sess := auth.FromContext(c).Session()
	if sess == nil {
		response.Unauthorized(c)
		return
	}
	if err := h.accounts.ChangePassword(c.Request.Context(), sess.UserID, sess.SessionID, dto.OldPassword, dto.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, identity.ErrOwnerExists):
		response.Forbidden(c, err.Error())
	case errors.Is(err, identity.ErrWrongPassword):
		response.Forbidden(c, err.Error())
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrPasswordSameAsOld):
		response.BadRequest(c, err.Error())
	default:
		response.Error(c, err)
	}
}
