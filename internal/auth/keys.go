package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys は SESSION_SECRET から導出した用途別の鍵です。
type Keys struct {
	CookieHash  []byte // クッキー署名（HMAC）用
	CookieBlock []byte // クッキー暗号化（AES-256）用
	Token       []byte // トークン署名（HS256）用
}

// DeriveKeys は単一の秘密鍵から HKDF-SHA256 で用途別の鍵を導出します。
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, errors.New("session secret is empty")
	}
	var (
		keys Keys
		err  error
	)
	if keys.CookieHash, err = expand(secret, "cookie-hash", 64); err != nil {
		return Keys{}, err
	}
	if keys.CookieBlock, err = expand(secret, "cookie-block", 32); err != nil {
		return Keys{}, err
	}
	if keys.Token, err = expand(secret, "token", 32); err != nil {
		return Keys{}, err
	}
	return keys, nil
}

func expand(secret, purpose string, size int) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("bookshelf/"+purpose))
	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", purpose, err)
	}
	return out, nil
}
