// Package apperr はアプリケーション全体で共有するエラー分類を提供します。
package apperr

import (
	"errors"
	"fmt"
)

// Kind はエラーの分類を表します。HTTP ステータスへの対応付けに利用します。
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error はクライアントへ返すコードとメッセージを持つエラーです。
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is はコードが一致する *Error 同士を同一とみなします。
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

func newError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: cause}
}

// Validation は入力不備を表すエラーを返します（400）。
func Validation(code, message string) *Error {
	return newError(KindValidation, code, message, nil)
}

// Auth は未ログインや認証失敗を表すエラーを返します（401）。
func Auth(code, message string) *Error {
	return newError(KindAuth, code, message, nil)
}

// NotFound は対象が存在しないことを表すエラーを返します（404）。
func NotFound(code, message string) *Error {
	return newError(KindNotFound, code, message, nil)
}

// Conflict は一意制約違反を表すエラーを返します（409）。
func Conflict(code, message string) *Error {
	return newError(KindConflict, code, message, nil)
}

// Internal は想定外の障害をラップします（500）。
func Internal(message string, cause error) *Error {
	return newError(KindInternal, CodeInternal, message, cause)
}

// KindOf は err の分類を返します。*Error でない場合は KindInternal です。
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// エラーコード一覧
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeUserExists         = "USER_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeBookNotFound       = "BOOK_NOT_FOUND"
	CodeNoReviews          = "NO_REVIEWS"
	CodeReviewNotFound     = "REVIEW_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)
