package catalog

import (
	"context"
	"time"
)

// Review は書籍に付いたユーザー1人分のレビューです。
type Review struct {
	Text string    `json:"review"`
	Date time.Time `json:"date"`
}

// ReviewSource は書籍ごとのレビューを参照します。
type ReviewSource interface {
	// Snapshot は isbn のレビューのコピーを返します。レビューがなければ空のマップです。
	Snapshot(ctx context.Context, isbn string) map[string]Review
}

// BookView は読み取り API が返す、レビュー付きの書籍です。
type BookView struct {
	Book
	Reviews map[string]Review `json:"reviews"`
}

func viewOf(ctx context.Context, src ReviewSource, book Book) BookView {
	var reviews map[string]Review
	if src != nil {
		reviews = src.Snapshot(ctx, book.ISBN)
	}
	if reviews == nil {
		reviews = map[string]Review{}
	}
	return BookView{Book: book, Reviews: reviews}
}
