package auth

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/bookshelf/internal/apperr"
)

const (
	SessionCookieName = "bs_session"
	sessionKeyID      = "sid"
)

// SessionOptions はセッションクッキーの属性を返します。MaxAge はトークンの有効期間に揃えます。
func SessionOptions(ttl time.Duration, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin は POST /login のハンドラーです。
func (m *Manager) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation(apperr.CodeInvalidInput, "username and password are required"), "")
		return
	}

	session := sessions.Default(c)
	sid, _ := session.Get(sessionKeyID).(string)
	if sid == "" {
		sid = uuid.NewString()
	}

	result, err := m.Login(c.Request.Context(), sid, req.Username, req.Password)
	if err != nil {
		apperr.Respond(c, err, "failed to log in")
		return
	}

	session.Set(sessionKeyID, sid)
	if err := session.Save(); err != nil {
		m.Logout(c.Request.Context(), sid)
		apperr.Respond(c, apperr.Internal("failed to save session", err), "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "login successful",
		"token":    result.Token,
		"username": result.Username,
	})
}

// HandleLogout は POST /logout のハンドラーです。
func (m *Manager) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	sid, _ := session.Get(sessionKeyID).(string)
	m.Logout(c.Request.Context(), sid)

	session.Clear()
	if err := session.Save(); err != nil {
		apperr.Respond(c, apperr.Internal("failed to clear session", err), "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "logged out",
	})
}
