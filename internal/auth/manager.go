// Package auth はログイン、セッション管理、認可ゲートを提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/bookshelf/internal/apperr"
	"github.com/yourusername/bookshelf/internal/users"
)

// Principal は認可済みリクエストの主体です。
type Principal struct {
	Username string
}

// LoginResult はログイン成功時に返す情報です。
type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// Manager はセッションの状態遷移（未ログイン → ログイン済み → 未ログイン/ログイン済み）を管理します。
type Manager struct {
	users    users.Directory
	sessions SessionStore
	signer   Signer
	logger   zerolog.Logger
	now      func() time.Time
}

// ManagerOption は Manager の設定を変更します。
type ManagerOption func(*Manager)

// WithSessionClock はセッション期限の判定に使う現在時刻を差し替えます。
func WithSessionClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager は認証マネージャーを作成します。
func NewManager(dir users.Directory, sessions SessionStore, signer Signer, logger zerolog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		users:    dir,
		sessions: sessions,
		signer:   signer,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login は資格情報を検証し、トークンを発行して sessionID のセッションを上書きします。
// 認証に失敗した場合、既存のセッションには触れません。
func (m *Manager) Login(ctx context.Context, sessionID, username, password string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, apperr.Validation(apperr.CodeInvalidInput, "username and password are required")
	}
	if sessionID == "" {
		return LoginResult{}, apperr.Internal("failed to log in", errors.New("session id is empty"))
	}

	if !m.users.IsRegistered(ctx, username) {
		return LoginResult{}, apperr.Auth(apperr.CodeUserNotFound, "user not found")
	}
	account, ok := m.users.VerifyCredentials(ctx, username, password)
	if !ok {
		return LoginResult{}, apperr.Auth(apperr.CodeInvalidCredentials, "wrong password")
	}

	signed, err := m.signer.Sign(account.Username)
	if err != nil {
		return LoginResult{}, apperr.Internal("failed to issue token", err)
	}

	m.sessions.Put(ctx, SessionRecord{
		ID:         sessionID,
		Authorized: true,
		Username:   account.Username,
		Token:      signed.Token,
		IssuedAt:   signed.IssuedAt,
		ExpiresAt:  signed.ExpiresAt,
	})
	m.logger.Info().Str("username", account.Username).Time("expires_at", signed.ExpiresAt).Msg("login succeeded")

	return LoginResult{
		Token:     signed.Token,
		Username:  account.Username,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

// Authorize は認可が必要なリクエストのゲートです。
// トークンの検証に失敗した場合はセッションを破棄してからエラーを返します。
// 成功時はセッションを変更しません。
func (m *Manager) Authorize(ctx context.Context, sessionID string) (Principal, error) {
	record, ok := m.sessions.Get(ctx, sessionID)
	if !ok || !record.Authorized {
		return Principal{}, apperr.Auth(apperr.CodeUnauthorized, "not authorized, please log in")
	}
	if record.Token == "" {
		return Principal{}, apperr.Auth(apperr.CodeTokenMissing, "missing token, please log in again")
	}

	claims, err := m.signer.Verify(record.Token)
	if err == nil && claims.Username != record.Username {
		err = ErrInvalidToken
	}
	// exp は秒に切り上げられているため、正確な期限はレコード側で判定する
	if err == nil && !record.ExpiresAt.IsZero() && !m.now().Before(record.ExpiresAt) {
		err = fmt.Errorf("%w: session expired at %s", ErrInvalidToken, record.ExpiresAt.Format(time.RFC3339Nano))
	}
	if err != nil {
		// 同じトークンを保持している場合のみ削除（並行する再ログインは残す）
		m.sessions.DeleteIfToken(ctx, sessionID, record.Token)
		m.logger.Warn().Err(err).Str("username", record.Username).Msg("session destroyed")
		return Principal{}, apperr.Auth(apperr.CodeSessionExpired, "session expired or invalid, please log in again")
	}

	return Principal{Username: claims.Username}, nil
}

// Logout はセッションを破棄します。
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	m.sessions.Delete(ctx, sessionID)
}
