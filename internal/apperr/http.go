package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusCode は err に対応する HTTP ステータスを返します。
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond はエラーを JSON レスポンスとして書き込みます。
// fallback は想定外のエラー時に返すメッセージです。
func Respond(c *gin.Context, err error, fallback string) {
	c.JSON(StatusCode(err), Body(err, fallback))
}

// Abort は Respond と同じ内容でハンドラーチェーンを中断します。
func Abort(c *gin.Context, err error, fallback string) {
	c.AbortWithStatusJSON(StatusCode(err), Body(err, fallback))
}

// Body はレスポンスボディを組み立てます。
func Body(err error, fallback string) gin.H {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
	}
	message := fallback
	if appErr != nil && appErr.Message != "" {
		message = appErr.Message
	}
	if message == "" {
		message = "internal server error"
	}
	return gin.H{
		"code":    CodeInternal,
		"message": message,
		"error":   err.Error(),
	}
}
