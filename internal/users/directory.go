// Package users は登録済みアカウントの管理を提供します。
package users

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/yourusername/bookshelf/internal/apperr"
)

// MinPasswordLength はパスワードに必要な最小文字数です。
const MinPasswordLength = 6

// Account は登録済みのユーザーです。登録後に変更されることはありません。
type Account struct {
	Username string
	Password string
}

// Directory はアカウントの登録と照合を行います。
type Directory interface {
	Register(ctx context.Context, username, password string) (Account, error)
	IsRegistered(ctx context.Context, username string) bool
	VerifyCredentials(ctx context.Context, username, password string) (Account, bool)
}

// MemoryDirectory はプロセス内でアカウントを保持する Directory 実装です。
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryDirectory は空の MemoryDirectory を作成します。
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		accounts: make(map[string]Account),
	}
}

// Register はアカウントを作成します。
// 必須項目の欠落、重複、短すぎるパスワードの順に検査します。
func (d *MemoryDirectory) Register(ctx context.Context, username, password string) (Account, error) {
	if username == "" || password == "" {
		return Account{}, apperr.Validation(apperr.CodeInvalidInput, "username and password are required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.accounts[username]; exists {
		return Account{}, apperr.Conflict(apperr.CodeUserExists, fmt.Sprintf("user %q already exists", username))
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Account{}, apperr.Validation(apperr.CodeWeakPassword, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	account := Account{Username: username, Password: password}
	d.accounts[username] = account
	return account, nil
}

// IsRegistered は username が登録済みかどうかを返します。
func (d *MemoryDirectory) IsRegistered(ctx context.Context, username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.accounts[username]
	return ok
}

// VerifyCredentials はユーザー名とパスワードが一致するアカウントを返します。
func (d *MemoryDirectory) VerifyCredentials(ctx context.Context, username, password string) (Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	account, ok := d.accounts[username]
	if !ok || account.Password != password {
		return Account{}, false
	}
	return account, true
}
