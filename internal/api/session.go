package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/auth"
)

// SessionCookie carries the admin session token.
const SessionCookie = "salesdash_session"

const (
	ctxRole    = "role"
	ctxSession = "session"
)

// LoginRequest is the login form or JSON body
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// SessionResponse describes the caller's role
type SessionResponse struct {
	IsAdmin   bool   `json:"isAdmin"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func sessionToken(c *gin.Context) string {
	if v := c.GetHeader("Authorization"); strings.HasPrefix(v, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
	}
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return token
}

// SessionMiddleware resolves the viewer role. Requests without a live session are
// restricted viewers, never rejected.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := auth.RoleRestricted
		if s, ok := h.auth.Validate(sessionToken(c)); ok {
			role = auth.RoleAdmin
			c.Set(ctxSession, s)
		}
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireAdmin rejects restricted viewers with 403.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether SessionMiddleware found an admin session.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == auth.RoleAdmin
}

// SignIn checks the credential and sets the session cookie.
func (h *Handler) SignIn(c *gin.Context, username, password string) (auth.Session, error) {
	s, err := h.auth.Login(c.ClientIP(), username, password)
	if err != nil {
		return auth.Session{}, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, s.Token, int(h.auth.SessionTTL().Seconds()), "/", "", false, true)
	return s, nil
}

// SignOut drops the session and clears the cookie.
func (h *Handler) SignOut(c *gin.Context) {
	h.auth.Logout(sessionToken(c))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// Login signs the admin in
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login request"})
		return
	}

	s, err := h.SignIn(c, req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, try again later"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	case err != nil:
		h.logger.Error("login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		IsAdmin:   true,
		Role:      auth.RoleAdmin,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout ends the session
// POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	h.SignOut(c)
	c.JSON(http.StatusOK, SessionResponse{IsAdmin: false, Role: auth.RoleRestricted})
}

// GetSession returns the caller's role
// GET /api/session
func (h *Handler) GetSession(c *gin.Context) {
	resp := SessionResponse{IsAdmin: IsAdmin(c), Role: c.GetString(ctxRole)}
	if v, ok := c.Get(ctxSession); ok {
		resp.ExpiresAt = v.(auth.Session).ExpiresAt.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
