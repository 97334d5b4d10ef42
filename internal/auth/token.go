package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はトークンの既定の有効期間です。
const DefaultTokenTTL = time.Hour

var (
	// ErrInvalidToken は署名・期限・内容のいずれかが不正なトークンを表します。
	ErrInvalidToken = errors.New("invalid token")
)

// Claims はトークンに含めるクレームです。
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// SignedToken は発行済みトークンとその有効期間です。
type SignedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer はトークンの発行と検証を行います。署名方式は実装に委ねます。
type Signer interface {
	Sign(username string) (SignedToken, error)
	Verify(token string) (*Claims, error)
}

// JWTSigner は HS256 の JWT を扱う Signer です。
type JWTSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// JWTOption は JWTSigner の設定を変更します。
type JWTOption func(*JWTSigner)

// WithClock は現在時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTSigner) {
		s.now = now
	}
}

// NewJWTSigner は JWTSigner を作成します。ttl が 0 以下なら DefaultTokenTTL を使います。
func NewJWTSigner(key []byte, ttl time.Duration, opts ...JWTOption) *JWTSigner {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &JWTSigner{
		key: key,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL はトークンの有効期間を返します。
func (s *JWTSigner) TTL() time.Duration {
	return s.ttl
}

// Sign は username を含むトークンを発行します。
// JWT の exp は秒単位なので切り上げて埋め込み、正確な期限は SignedToken.ExpiresAt で返します。
func (s *JWTSigner) Sign(username string) (SignedToken, error) {
	if username == "" {
		return SignedToken{}, errors.New("username is required")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiresAt)),
		},
		Username: username,
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return SignedToken{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return SignedToken{Token: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify は署名と有効期限を検証し、クレームを返します。
func (s *JWTSigner) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); !truncated.Equal(t) {
		return truncated.Add(time.Second)
	}
	return t
}
