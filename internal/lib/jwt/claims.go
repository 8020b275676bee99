package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
)

// Claims — содержимое токена: идентификатор пользователя плюс стандартные поля (iat, exp).
type Claims struct {
	IdentityID string `json:"id"`
	jwt.RegisteredClaims
}

// IssuedAtTime возвращает время выпуска токена.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// Issue создаёт токен, подписанный секретным ключом. Срок действия задаёт tokenTTL.
func (j *MakerImpl) Issue(identityID string) (string, error) {
	const op = "jwt.Issue"
	now := j.now()
	claims := Claims{
		IdentityID: identityID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify разбирает токен, проверяет подпись, алгоритм и срок действия.
// Любая ошибка возвращается как apperr.KindInvalidToken.
func (j *MakerImpl) Verify(tokenStr string) (*Claims, error) {
	const op = "jwt.Verify"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "your token has expired"
		}
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidToken(msg, err))
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.IdentityID == "" {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidToken("invalid token", nil))
	}
	return claims, nil
}
