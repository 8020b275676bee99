// Package auth содержит бизнес-логику регистрации, входа, проверки сессии
// и сброса пароля.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/lib/jwt"
	"github.com/magabrotheeeer/tourbooking/internal/lib/resettoken"
	"github.com/magabrotheeeer/tourbooking/internal/lib/sl"
	"github.com/magabrotheeeer/tourbooking/internal/models"
)

// UserRepository описывает контракт хранилища учётных записей.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByID возвращает активного пользователя.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail возвращает активного пользователя вместе с хэшем пароля.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByResetToken ищет пользователя по хэшу действующего токена сброса.
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	// UpdatePassword меняет хэш пароля и очищает состояние сброса.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) (*models.User, error)
}

// Hasher хеширует и сверяет пароли.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Notifier доставляет ссылку сброса пароля вне основного ответа.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, notice models.PasswordResetNotice) error
}

// Options — настройки сервиса.
type Options struct {
	// ResetTTL срок действия токена сброса.
	ResetTTL time.Duration
	// ResetURLBase префикс ссылки сброса, к нему дописывается сырой токен.
	ResetURLBase string
	// Now источник времени, по умолчанию time.Now.
	Now func() time.Time
}

// Session — результат успешного входа: пользователь и выданный токен.
type Session struct {
	User  *models.User
	Token string
}

// Сообщения об ошибках аутентификации.
const (
	MsgNotLoggedIn        = "you are not logged in"
	MsgUserGone           = "the user no longer exists"
	MsgPasswordChanged    = "the user changed the password recently, please log in again"
	MsgBadCredentials     = "incorrect email or password"
	MsgMissingCredentials = "please provide email and password"
	MsgPasswordsDiffer    = "passwords are not the same"
	MsgWrongPassword      = "your current password is wrong"
	MsgResetInvalid       = "token is invalid or has expired"
	MsgNoSuchEmail        = "there is no such email address"
	MsgSendFailed         = "there was an error sending the email. Try again later!"
)

// AuthService отвечает за регистрацию, вход, проверку токенов и смену пароля.
type AuthService struct {
	users    UserRepository
	hasher   Hasher
	jwtMaker jwt.Maker
	notifier Notifier
	opts     Options
	log      *slog.Logger
}

// NewAuthService создаёт AuthService.
func NewAuthService(users UserRepository, hasher Hasher, jwtMaker jwt.Maker, notifier Notifier, opts Options, log *slog.Logger) *AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 10 * time.Minute
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		jwtMaker: jwtMaker,
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

// Signup создаёт пользователя и сразу открывает сессию.
// Роль admin при регистрации не назначается.
func (s *AuthService) Signup(ctx context.Context, in models.SignupInput) (*Session, error) {
	const op = "auth.Signup"

	if in.Password != in.PasswordConfirm {
		return nil, apperr.Validation("invalid input data. "+MsgPasswordsDiffer,
			map[string]string{"passwordConfirm": MsgPasswordsDiffer})
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid input data. role is either: user, guide, lead-guide, admin",
			map[string]string{"role": "unknown role"})
	}
	if role == models.RoleAdmin {
		return nil, apperr.Validation("invalid input data. admin role can not be assigned at signup",
			map[string]string{"role": "admin role can not be assigned at signup"})
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Photo:        in.Photo,
		Role:         role,
		PasswordHash: hashed,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

// Login проверяет email и пароль и выдаёт токен.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "auth.Login"

	if email == "" || rawPassword == "" {
		return nil, apperr.Validation(MsgMissingCredentials, nil)
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated(MsgBadCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, apperr.Unauthenticated(MsgBadCredentials)
	}
	return s.issue(op, user)
}

// Authenticate проверяет токен и возвращает его владельца.
// Токен отклоняется, если пользователь удалён или сменил пароль после выдачи токена.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Authenticate"

	if token == "" {
		return nil, apperr.Unauthenticated(MsgNotLoggedIn)
	}
	claims, err := s.jwtMaker.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.IdentityID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated(MsgUserGone)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, apperr.Unauthenticated(MsgPasswordChanged)
	}
	return user, nil
}

// ForgotPassword создаёт одноразовый токен сброса, сохраняет его хэш и
// отправляет ссылку через Notifier. Если отправить не удалось, токен удаляется.
// Возвращает сырой токен; показывать его клиенту можно только в режиме разработки.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	const op = "auth.ForgotPassword"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", apperr.NotFound(MsgNoSuchEmail)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	raw, err := resettoken.Random()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	expires := s.opts.Now().Add(s.opts.ResetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, resettoken.Hash(raw), expires); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	notice := models.PasswordResetNotice{
		Email:     user.Email,
		Name:      user.Name,
		ResetURL:  strings.TrimRight(s.opts.ResetURLBase, "/") + "/" + raw,
		ExpiresAt: expires,
	}
	if err := s.notifier.NotifyPasswordReset(ctx, notice); err != nil {
		log.Error("failed to send reset notice", sl.Err(err))
		// Запрос мог быть отменён клиентом, откат должен выполниться всё равно.
		if clearErr := s.users.ClearResetToken(context.WithoutCancel(ctx), user.ID); clearErr != nil {
			log.Error("failed to clear reset token", sl.Err(clearErr))
		}
		return "", apperr.Internal(MsgSendFailed, err)
	}
	return raw, nil
}

// ResetPassword задаёт новый пароль по сырому токену сброса и открывает сессию.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, in models.ResetPasswordInput) (*Session, error) {
	const op = "auth.ResetPassword"

	user, err := s.users.GetUserByResetToken(ctx, resettoken.Hash(rawToken), s.opts.Now())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation(MsgResetInvalid, nil)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if in.Password != in.PasswordConfirm {
		return nil, apperr.Validation("invalid input data. "+MsgPasswordsDiffer,
			map[string]string{"passwordConfirm": MsgPasswordsDiffer})
	}
	return s.setPassword(ctx, op, user.ID, in.Password)
}

// UpdatePassword меняет пароль после проверки текущего.
func (s *AuthService) UpdatePassword(ctx context.Context, userID string, in models.UpdatePasswordInput) (*Session, error) {
	const op = "auth.UpdatePassword"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, in.PasswordCurrent); err != nil {
		return nil, apperr.Unauthenticated(MsgWrongPassword)
	}
	if in.Password != in.PasswordConfirm {
		return nil, apperr.Validation("invalid input data. "+MsgPasswordsDiffer,
			map[string]string{"passwordConfirm": MsgPasswordsDiffer})
	}
	return s.setPassword(ctx, op, user.ID, in.Password)
}

// setPassword сохраняет новый хэш. Время смены сдвинуто на секунду назад,
// чтобы токен, выданный в ту же секунду, оставался действительным.
func (s *AuthService) setPassword(ctx context.Context, op, userID, rawPassword string) (*Session, error) {
	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.UpdatePassword(ctx, userID, hashed, s.opts.Now().Add(-time.Second))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

func (s *AuthService) issue(op string, user *models.User) (*Session, error) {
	token, err := s.jwtMaker.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{User: user, Token: token}, nil
}
