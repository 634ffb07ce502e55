package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/ems/internal/model"
)

// tokenIssuer はトークンのissクレームに設定する値。
const tokenIssuer = "ems"

// ErrInvalidToken はトークンの署名・有効期限・クレームのいずれかが不正な場合に返す。
var ErrInvalidToken = errors.New("invalid token")

// tokenClaims はアクセストークンのクレーム。
// subにユーザーID、roleにロールを格納する。
type tokenClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer はHS256署名のアクセストークンを発行・検証する。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer はTokenIssuerを生成する。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はユーザーのアクセストークンと有効期限を返す。
func (t *TokenIssuer) Issue(user *model.User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse はトークンを検証し、呼び出し元を復元する。
// 不正なトークンにはErrInvalidTokenをラップしたエラーを返す。
func (t *TokenIssuer) Parse(tokenString string) (model.Caller, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return model.Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return model.Caller{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}

	return model.Caller{UserID: claims.Subject, Role: claims.Role}, nil
}
