// Package logging は zerolog によるロガー生成と Gin 用のリクエストログを提供します。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New は level と出力先からロガーを作成します。w が nil の場合は標準エラーに出力します。
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewConsole は開発向けに整形された出力のロガーを作成します。
func NewConsole(level string) zerolog.Logger {
	return New(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Nop は何も出力しないロガーです。テストで使います。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
