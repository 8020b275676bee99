// Package models содержит доменные модели приложения: пользователей, туры и отзывы,
// а также входные структуры для их создания и частичного обновления.
package models

import "time"

// User представляет зарегистрированного пользователя (Identity).
// Хэш пароля и состояние сброса никогда не сериализуются в ответы.
type User struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Photo                string     `json:"photo"`
	Role                 Role       `json:"role"`
	PasswordHash         string     `json:"-"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   *string    `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	Active               bool       `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// ChangedPasswordAfter сообщает, менялся ли пароль после выпуска токена.
// Сравнение идёт с точностью до секунды, как в самом токене.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// UserPatch — частичное обновление пользователя администратором.
// Пароль этим путём не меняется.
type UserPatch struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Photo *string `json:"photo" validate:"omitempty"`
	Role  *Role   `json:"role" validate:"omitempty"`
}

// Empty сообщает, что в патче нет ни одного поля.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Photo == nil && p.Role == nil
}

// PasswordResetNotice — сообщение во внешний канал с одноразовой ссылкой сброса.
type PasswordResetNotice struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ResetURL  string    `json:"reset_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
