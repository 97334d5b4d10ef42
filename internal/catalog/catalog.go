// Package catalog は読み取り専用の書籍カタログを提供します。
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed books.json
var defaultBooks []byte

// Book はカタログ上の書籍です。
type Book struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Catalog は書籍の検索手段を提供します。
type Catalog interface {
	Find(ctx context.Context, isbn string) (Book, bool, error)
	List(ctx context.Context) ([]Book, error)
	ByAuthor(ctx context.Context, author string) ([]Book, error)
	ByTitle(ctx context.Context, title string) ([]Book, error)
}

// Memory は固定データを保持するカタログです。生成後は変更されません。
type Memory struct {
	books map[string]Book
	order []string
}

// NewMemory は書籍一覧からカタログを作成します。ISBN が空または重複している場合はエラーです。
func NewMemory(books []Book) (*Memory, error) {
	m := &Memory{books: make(map[string]Book, len(books))}
	for _, b := range books {
		if strings.TrimSpace(b.ISBN) == "" {
			return nil, fmt.Errorf("book %q has no isbn", b.Title)
		}
		if _, dup := m.books[b.ISBN]; dup {
			return nil, fmt.Errorf("duplicate isbn %s", b.ISBN)
		}
		m.books[b.ISBN] = b
		m.order = append(m.order, b.ISBN)
	}
	sort.Slice(m.order, func(i, j int) bool {
		return isbnLess(m.order[i], m.order[j])
	})
	return m, nil
}

// Default は埋め込みデータからカタログを作成します。
func Default() (*Memory, error) {
	return parse(defaultBooks)
}

// LoadFile は JSON ファイル（ISBN をキーとするオブジェクト）からカタログを作成します。
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Memory, error) {
	var raw map[string]struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	books := make([]Book, 0, len(raw))
	for isbn, b := range raw {
		books = append(books, Book{ISBN: isbn, Title: b.Title, Author: b.Author})
	}
	return NewMemory(books)
}

// Find は ISBN に一致する書籍を返します。
// 完全一致がなければ、数字だけの ISBN は先頭のゼロを除いて探します（"0001" は "1"）。
func (m *Memory) Find(ctx context.Context, isbn string) (Book, bool, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, false, err
	}
	if b, ok := m.books[isbn]; ok {
		return b, true, nil
	}
	if trimmed := strings.TrimLeft(isbn, "0"); trimmed != isbn && trimmed != "" && isDigits(trimmed) {
		b, ok := m.books[trimmed]
		return b, ok, nil
	}
	return Book{}, false, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// List は全書籍を ISBN 順で返します。
func (m *Memory) List(ctx context.Context) ([]Book, error) {
	return m.filter(ctx, func(Book) bool { return true })
}

// ByAuthor は著者名が大文字小文字を無視して一致する書籍を返します。
func (m *Memory) ByAuthor(ctx context.Context, author string) ([]Book, error) {
	return m.filter(ctx, func(b Book) bool {
		return strings.EqualFold(b.Author, author)
	})
}

// ByTitle はタイトルに部分文字列を含む書籍を返します（大文字小文字は無視）。
func (m *Memory) ByTitle(ctx context.Context, title string) ([]Book, error) {
	needle := strings.ToLower(title)
	return m.filter(ctx, func(b Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle)
	})
}

func (m *Memory) filter(ctx context.Context, keep func(Book) bool) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Book, 0)
	for _, isbn := range m.order {
		if b := m.books[isbn]; keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// 数値の ISBN は数値順、それ以外は文字列順
func isbnLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil && na != nb {
		return na < nb
	}
	return a < b
}

// WithLatency は各参照の前に d だけ待つカタログを返します。d が 0 以下なら c をそのまま返します。
func WithLatency(c Catalog, d time.Duration) Catalog {
	if d <= 0 {
		return c
	}
	return &delayed{next: c, delay: d}
}

type delayed struct {
	next  Catalog
	delay time.Duration
}

func (d *delayed) wait(ctx context.Context) error {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *delayed) Find(ctx context.Context, isbn string) (Book, bool, error) {
	if err := d.wait(ctx); err != nil {
		return Book{}, false, err
	}
	return d.next.Find(ctx, isbn)
}

func (d *delayed) List(ctx context.Context) ([]Book, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.next.List(ctx)
}

func (d *delayed) ByAuthor(ctx context.Context, author string) ([]Book, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.next.ByAuthor(ctx, author)
}

func (d *delayed) ByTitle(ctx context.Context, title string) ([]Book, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.next.ByTitle(ctx, title)
}
