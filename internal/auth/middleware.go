package auth

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/apperr"
)

// ContextUserKey は、ハンドラー間で認可済みの Principal を共有するためのキーです。
const ContextUserKey = "auth.principal"

// RequireLogin はセッションを検証するミドルウェアを返します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		sid, _ := session.Get(sessionKeyID).(string)

		principal, err := m.Authorize(c.Request.Context(), sid)
		if err != nil {
			if errors.Is(err, apperr.Auth(apperr.CodeSessionExpired, "")) {
				session.Clear()
				_ = session.Save()
			}
			apperr.Abort(c, err, "")
			return
		}

		c.Set(ContextUserKey, principal)
		c.Next()
	}
}

// PrincipalFrom は RequireLogin が設定した Principal を返します。
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := v.(Principal)
	if !ok || principal.Username == "" {
		return Principal{}, false
	}
	return principal, true
}
