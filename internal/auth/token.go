package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/campushub/internal/model"
)

// tokenIssuer はトークンのiss claimに設定する発行者名。
const tokenIssuer = "campushub"

// TokenClaims はアクセストークンに埋め込むクレームセット。
// プリンシパルの全フィールドを自己完結的に保持し、検証時のストア参照を不要にする。
type TokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec はステートレスなアクセストークンの発行・検証を行う。
// HMAC-SHA256署名・固定TTL。検証はO(1)でストア参照を伴わず、
// どのレプリカでも安全に実行できる。発行済みトークンの失効手段はない。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はプリンシパルを署名付きトークンにエンコードし、有効期限とともに返す。
func (c *TokenCodec) Issue(principal model.Principal) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := TokenClaims{
		Name:  principal.Name,
		Email: principal.Email,
		Role:  string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Verify はトークンを検証し、エンコードされたプリンシパルを復元する。
// 期限切れはTokenExpired、署名不一致・構造不正はTokenInvalidを返す。
func (c *TokenCodec) Verify(tokenString string) (*model.Principal, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.NewTokenExpiredError()
		}
		return nil, model.NewTokenInvalidError()
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, model.NewTokenInvalidError()
	}

	return &model.Principal{
		ID:    accountID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  model.Role(claims.Role),
	}, nil
}
