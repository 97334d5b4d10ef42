package reviews

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/apperr"
	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/logging"
)

type upsertRequest struct {
	Review string `json:"review"`
}

// ListHandler は GET /review/:isbn のハンドラーを返します。認証は不要です。
func ListHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		isbn := c.Param("isbn")
		book, reviews, err := m.List(c.Request.Context(), isbn)
		if err != nil {
			apperr.Respond(c, err, "failed to load reviews")
			return
		}

		payload := gin.H{
			"isbn":    book.ISBN,
			"title":   book.Title,
			"reviews": reviews,
		}
		if len(reviews) == 0 {
			payload["message"] = fmt.Sprintf("no reviews available for %q", book.Title)
		}
		c.JSON(http.StatusOK, payload)
	}
}

// UpsertHandler は PUT /auth/review/:isbn のハンドラーを返します。auth.RequireLogin の後に置きます。
func UpsertHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req upsertRequest
		// 本文なしは空レビューとして扱い、書籍の存在確認を先に行う
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			apperr.Respond(c, apperr.Validation(apperr.CodeInvalidInput, "request body must be JSON like {\"review\": \"...\"}"), "")
			return
		}

		principal, _ := auth.PrincipalFrom(c)
		book, review, err := m.Upsert(c.Request.Context(), c.Param("isbn"), principal, req.Review)
		if err != nil {
			apperr.Respond(c, err, "failed to save review")
			return
		}

		logging.FromContext(c).Info().
			Str("isbn", book.ISBN).
			Str("username", principal.Username).
			Msg("review saved")
		c.JSON(http.StatusOK, gin.H{
			"message": "review saved successfully",
			"book":    book.Title,
			"review": gin.H{
				"username": principal.Username,
				"review":   review.Text,
				"date":     review.Date,
			},
		})
	}
}

// DeleteHandler は DELETE /auth/review/:isbn のハンドラーを返します。auth.RequireLogin の後に置きます。
func DeleteHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := auth.PrincipalFrom(c)
		book, err := m.Delete(c.Request.Context(), c.Param("isbn"), principal)
		if err != nil {
			apperr.Respond(c, err, "failed to delete review")
			return
		}

		logging.FromContext(c).Info().
			Str("isbn", book.ISBN).
			Str("username", principal.Username).
			Msg("review deleted")
		c.JSON(http.StatusOK, gin.H{
			"message": "review deleted successfully",
			"book":    book.Title,
		})
	}
}
