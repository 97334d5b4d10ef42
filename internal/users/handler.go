package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/apperr"
	"github.com/yourusername/bookshelf/internal/logging"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler は POST /register のハンドラーを返します。
func RegisterHandler(dir Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation(apperr.CodeInvalidInput, "username and password are required"), "")
			return
		}

		account, err := dir.Register(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			apperr.Respond(c, err, "failed to register user")
			return
		}

		logging.FromContext(c).Info().Str("username", account.Username).Msg("user registered")
		c.JSON(http.StatusCreated, gin.H{
			"message":  "user registered successfully",
			"username": account.Username,
		})
	}
}
