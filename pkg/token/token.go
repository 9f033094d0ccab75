// Package token はステートレスな認証トークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTであり、サーバー側に状態を持たない。
// 無効化は有効期限切れによってのみ行われる。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiry はトークンのデフォルト有効期限。
const DefaultExpiry = 72 * time.Hour

// Service はトークンの発行・検証サービス。
type Service struct {
	// secret はJWT署名用の秘密鍵。
	secret []byte
	// expiry は発行するトークンの有効期限。
	expiry time.Duration
}

// NewService は新しいトークンサービスを生成する。
// expiryが0以下の場合はDefaultExpiryを使用する。
func NewService(secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Service{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue はsubjectIDをissuerの下に紐づけた署名済みトークンを発行する。
func (s *Service) Issue(subjectID, issuer string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、subjectIDを返す。
// 署名不正・issuer不一致・構造不正・期限切れのいずれもok=falseに
// 集約され、失敗理由は呼び出し側へ漏れない。
func (s *Service) Verify(tokenString, issuer string) (subjectID string, ok bool) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
