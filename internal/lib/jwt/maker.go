// Package jwt реализует сервис токенов: выпуск и проверку подписанных JWT
// с идентификатором пользователя и временем выпуска.
package jwt

import (
	"time"
)

// Maker описывает интерфейс выпуска и проверки токенов.
type Maker interface {
	// Issue выпускает токен для пользователя с идентификатором identityID.
	Issue(identityID string) (string, error)
	// Verify проверяет подпись и срок действия токена и возвращает его claims.
	Verify(tokenStr string) (*Claims, error)
}

// MakerImpl реализует Maker поверх HS256 с общим секретом.
type MakerImpl struct {
	secretKey []byte           // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration    // Время жизни токена.
	now       func() time.Time // Источник времени, подменяется в тестах.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// WithClock подменяет источник времени для выпуска и проверки.
func (j *MakerImpl) WithClock(now func() time.Time) *MakerImpl {
	j.now = now
	return j
}
