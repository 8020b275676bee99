// Package resettoken выпускает одноразовые токены сброса пароля.
// Сырой токен уходит пользователю по внешнему каналу, в хранилище попадает только его хэш.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size — количество случайных байт в токене (64 символа в hex).
const Size = 32

// Random возвращает криптографически случайный токен в hex.
func Random() (string, error) {
	const op = "resettoken.Random"
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash выполняет детерминированное одностороннее преобразование (SHA-256, hex).
// Тем же преобразованием проверяется предъявленный токен.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
