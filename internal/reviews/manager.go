// Package reviews は書籍ごとのユーザーレビューを管理します。
package reviews

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/bookshelf/internal/apperr"
	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/catalog"
)

// Review はユーザー1人が1冊に付けるレビューです。
type Review = catalog.Review

// Manager はレビューを (カタログ上の ISBN, ユーザー名) をキーに保持します。
// 1冊につき1ユーザー1件で、変更・削除できるのは本人だけです。
type Manager struct {
	catalog catalog.Catalog
	now     func() time.Time

	mu     sync.RWMutex
	byBook map[string]map[string]Review
}

// Option は Manager の設定を変更します。
type Option func(*Manager)

// WithClock はレビュー日時の取得方法を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager は Manager を作成します。
func NewManager(cat catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog: cat,
		now:     time.Now,
		byBook:  make(map[string]map[string]Review),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Upsert は principal のレビューを作成、または既存のものを丸ごと置き換えます。
func (m *Manager) Upsert(ctx context.Context, isbn string, principal auth.Principal, text string) (catalog.Book, Review, error) {
	book, err := m.findBook(ctx, isbn)
	if err != nil {
		return catalog.Book{}, Review{}, err
	}
	if strings.TrimSpace(text) == "" {
		return catalog.Book{}, Review{}, apperr.Validation(apperr.CodeInvalidInput, "review text is required")
	}
	if principal.Username == "" {
		return catalog.Book{}, Review{}, apperr.Auth(apperr.CodeUnauthorized, "you must be logged in to post a review")
	}

	review := Review{Text: text, Date: m.now().UTC()}

	m.mu.Lock()
	defer m.mu.Unlock()
	reviews, ok := m.byBook[book.ISBN]
	if !ok {
		reviews = make(map[string]Review)
		m.byBook[book.ISBN] = reviews
	}
	reviews[principal.Username] = review
	return book, review, nil
}

// Delete は principal 自身のレビューだけを削除します。
func (m *Manager) Delete(ctx context.Context, isbn string, principal auth.Principal) (catalog.Book, error) {
	book, err := m.findBook(ctx, isbn)
	if err != nil {
		return catalog.Book{}, err
	}
	if principal.Username == "" {
		return catalog.Book{}, apperr.Auth(apperr.CodeUnauthorized, "you must be logged in to delete a review")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	reviews := m.byBook[book.ISBN]
	if len(reviews) == 0 {
		return catalog.Book{}, apperr.NotFound(apperr.CodeNoReviews, "no reviews exist for this book")
	}
	if _, ok := reviews[principal.Username]; !ok {
		return catalog.Book{}, apperr.NotFound(apperr.CodeReviewNotFound, "you have no review to delete for this book")
	}
	delete(reviews, principal.Username)
	if len(reviews) == 0 {
		delete(m.byBook, book.ISBN)
	}
	return book, nil
}

// List は書籍とそのレビューのコピーを返します。レビューがなければ空のマップです。
func (m *Manager) List(ctx context.Context, isbn string) (catalog.Book, map[string]Review, error) {
	book, err := m.findBook(ctx, isbn)
	if err != nil {
		return catalog.Book{}, nil, err
	}

	return book, m.Snapshot(ctx, book.ISBN), nil
}

// Snapshot は isbn のレビューのコピーを返します。書籍の存在は確認しません。
func (m *Manager) Snapshot(ctx context.Context, isbn string) map[string]Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reviews := m.byBook[isbn]
	out := make(map[string]Review, len(reviews))
	for username, r := range reviews {
		out[username] = r
	}
	return out
}

func (m *Manager) findBook(ctx context.Context, isbn string) (catalog.Book, error) {
	book, ok, err := m.catalog.Find(ctx, isbn)
	if err != nil {
		return catalog.Book{}, err
	}
	if !ok {
		return catalog.Book{}, catalog.BookNotFound(isbn)
	}
	return book, nil
}
