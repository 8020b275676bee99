package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

const (
	userColumns = `id::text, name, email, photo, role, password_hash, password_changed_at,
			  password_reset_token, password_reset_expires, active, created_at`
	userNotFound = "no user found with that id"
)

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Photo, &u.Role, &u.PasswordHash,
		&u.PasswordChangedAt, &u.PasswordResetToken, &u.PasswordResetExpires, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает сохранённую запись.
// Email приводится к нижнему регистру.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	q := `INSERT INTO users (id, name, email, photo, role, password_hash)
		  VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'default.jpg'), $5, $6)
		  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRow(ctx, q,
		uuid.NewString(), user.Name, strings.ToLower(user.Email), user.Photo, user.Role, user.PasswordHash))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, userNotFound))
	}
	return u, nil
}

// GetUserByID возвращает активного пользователя по id.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND active`
	u, err := scanUser(s.DB.QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, userNotFound))
	}
	return u, nil
}

// GetUserByEmail возвращает активного пользователя по email вместе с хэшем пароля.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND active`
	u, err := scanUser(s.DB.QueryRow(ctx, q, strings.ToLower(email)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, "there is no user with that email address"))
	}
	return u, nil
}

// GetUserByResetToken ищет пользователя по хэшу токена сброса, срок которого ещё не истёк.
func (s *Storage) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	q := `SELECT ` + userColumns + ` FROM users
		  WHERE password_reset_token = $1 AND password_reset_expires > $2 AND active`
	u, err := scanUser(s.DB.QueryRow(ctx, q, tokenHash, now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, "token is invalid or has expired"))
	}
	return u, nil
}

// SetResetToken сохраняет хэш токена сброса и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	const op = "storage.SetResetToken"
	q := `UPDATE users SET password_reset_token = $2, password_reset_expires = $3 WHERE id = $1`
	return s.execOne(ctx, op, userNotFound, q, id, tokenHash, expires)
}

// ClearResetToken удаляет состояние сброса пароля.
func (s *Storage) ClearResetToken(ctx context.Context, id string) error {
	const op = "storage.ClearResetToken"
	q := `UPDATE users SET password_reset_token = NULL, password_reset_expires = NULL WHERE id = $1`
	return s.execOne(ctx, op, userNotFound, q, id)
}

// UpdatePassword заменяет хэш пароля, фиксирует время смены и сбрасывает токен сброса.
func (s *Storage) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) (*models.User, error) {
	const op = "storage.UpdatePassword"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	q := `UPDATE users
		  SET password_hash = $2, password_changed_at = $3,
		      password_reset_token = NULL, password_reset_expires = NULL
		  WHERE id = $1 AND active
		  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRow(ctx, q, id, passwordHash, changedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, userNotFound))
	}
	return u, nil
}

// UpdateUser применяет частичное обновление. Пустой патч возвращает текущую запись.
func (s *Storage) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.GetUserByID(ctx, id)
	}

	set := newSetList(id)
	add(set, "name", patch.Name)
	if patch.Email != nil {
		email := strings.ToLower(*patch.Email)
		add(set, "email", &email)
	}
	add(set, "photo", patch.Photo)
	add(set, "role", patch.Role)

	q := `UPDATE users SET ` + set.sql() + ` WHERE id = $1 AND active RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRow(ctx, q, set.args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, userNotFound))
	}
	return u, nil
}

// DeactivateUser помечает пользователя неактивным; он исчезает из всех выборок.
func (s *Storage) DeactivateUser(ctx context.Context, id string) error {
	const op = "storage.DeactivateUser"
	return s.execOne(ctx, op, userNotFound, `UPDATE users SET active = FALSE WHERE id = $1 AND active`, id)
}

// DeleteUser удаляет пользователя вместе с его отзывами.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.DeleteUser"
	return s.execOne(ctx, op, userNotFound, `DELETE FROM users WHERE id = $1`, id)
}

// ListUsers возвращает страницу активных пользователей по параметрам запроса.
func (s *Storage) ListUsers(ctx context.Context, values url.Values) ([]query.Document, error) {
	const op = "storage.ListUsers"
	docs, err := query.New(s.DB, UserSchema, values, s.Limits).
		Where("active", true).
		Filter().Sort().LimitFields().Paginate().
		Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, userNotFound))
	}
	return docs, nil
}

// execOne выполняет изменение и возвращает NotFound, если не затронута ни одна строка.
func (s *Storage) execOne(ctx context.Context, op, notFound, q string, args ...any) error {
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, notFound))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, mapError(pgx.ErrNoRows, notFound))
	}
	return nil
}
