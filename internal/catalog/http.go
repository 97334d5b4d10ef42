package catalog

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/apperr"
)

// ListHandler は GET / のハンドラーを返します。各書籍には src のレビューが付きます。
func ListHandler(cat Catalog, src ReviewSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := cat.List(c.Request.Context())
		if err != nil {
			apperr.Respond(c, err, "failed to list books")
			return
		}
		c.JSON(http.StatusOK, keyed(c, src, books))
	}
}

// ISBNHandler は GET /isbn/:isbn のハンドラーを返します。
func ISBNHandler(cat Catalog, src ReviewSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		isbn := c.Param("isbn")
		book, ok, err := cat.Find(c.Request.Context(), isbn)
		if err != nil {
			apperr.Respond(c, err, "failed to look up book")
			return
		}
		if !ok {
			apperr.Respond(c, BookNotFound(isbn), "")
			return
		}
		c.JSON(http.StatusOK, viewOf(c.Request.Context(), src, book))
	}
}

// AuthorHandler は GET /author/:author のハンドラーを返します。
func AuthorHandler(cat Catalog, src ReviewSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		author := c.Param("author")
		books, err := cat.ByAuthor(c.Request.Context(), author)
		if err != nil {
			apperr.Respond(c, err, "failed to search books")
			return
		}
		if len(books) == 0 {
			apperr.Respond(c, apperr.NotFound(apperr.CodeBookNotFound, fmt.Sprintf("no books found for author %q", author)), "")
			return
		}
		c.JSON(http.StatusOK, keyed(c, src, books))
	}
}

// TitleHandler は GET /title/:title のハンドラーを返します。
func TitleHandler(cat Catalog, src ReviewSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("title")
		books, err := cat.ByTitle(c.Request.Context(), title)
		if err != nil {
			apperr.Respond(c, err, "failed to search books")
			return
		}
		if len(books) == 0 {
			apperr.Respond(c, apperr.NotFound(apperr.CodeBookNotFound, fmt.Sprintf("no books found with title containing %q", title)), "")
			return
		}
		c.JSON(http.StatusOK, keyed(c, src, books))
	}
}

// BookNotFound は未知の ISBN に対するエラーを返します。
func BookNotFound(isbn string) *apperr.Error {
	return apperr.NotFound(apperr.CodeBookNotFound, fmt.Sprintf("no book found with isbn %s", isbn))
}

func keyed(c *gin.Context, src ReviewSource, books []Book) map[string]BookView {
	out := make(map[string]BookView, len(books))
	for _, b := range books {
		out[b.ISBN] = viewOf(c.Request.Context(), src, b)
	}
	return out
}
