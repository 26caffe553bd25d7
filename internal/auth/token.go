package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenService はセッショントークンの発行と検証を提供する。
// トークンはHS256署名のJWTで、サブジェクトにユーザーのopenIdを持つ。
// サーバー側にセッション状態は持たず、Cookieのトークンだけで
// リクエストごとにユーザーを解決する。
type TokenService struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenService はTokenServiceを生成する。
// maxAgeはトークンの有効期間を指定する。
func NewTokenService(secret string, maxAge time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// sessionClaims はセッショントークンのクレーム。
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Issue は指定openIdのセッショントークンを発行する。
func (s *TokenService) Issue(openID string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	if openID == "" {
		return "", errors.New("open_id is required")
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   openID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Parse はセッショントークンを検証し、openIdを返す。
// 署名不正・期限切れ・アルゴリズム不一致はすべてエラーになる。
func (s *TokenService) Parse(tokenStr string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session secret is empty")
	}

	claims := &sessionClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !tok.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}

	return claims.Subject, nil
}
