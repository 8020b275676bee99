// Package middlewarectx содержит HTTP middleware: аутентификацию по JWT,
// проверку ролей, ограничение частоты запросов, метрики и защитные заголовки.
//
// Аутентифицированный пользователь не кладётся в контекст запроса,
// а явно передаётся следующему обработчику.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
)

// MsgForbidden возвращается, когда роль пользователя не допускает действие.
const MsgForbidden = "you do not have permission to do this action"

// IdentityResolver проверяет токен и возвращает пользователя, которому он выдан.
type IdentityResolver interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthedHandler — обработчик, которому нужен аутентифицированный пользователь.
type AuthedHandler func(w http.ResponseWriter, r *http.Request, user *models.User) error

// OptionalHandler — обработчик, для которого пользователь необязателен (может быть nil).
type OptionalHandler func(w http.ResponseWriter, r *http.Request, user *models.User) error

// Authenticator извлекает токен из запроса и разрешает его в пользователя.
type Authenticator struct {
	svc    IdentityResolver
	cookie string
	log    *slog.Logger
}

// NewAuthenticator создаёт Authenticator. cookie задаёт имя cookie с токеном сессии.
func NewAuthenticator(svc IdentityResolver, cookie string, log *slog.Logger) *Authenticator {
	return &Authenticator{svc: svc, cookie: cookie, log: log}
}

// Protect пропускает запрос только с действующей сессией.
// Токен берётся из заголовка Authorization: Bearer, затем из cookie.
func (a *Authenticator) Protect(next AuthedHandler) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		token := bearer(r)
		if token == "" {
			token = a.fromCookie(r)
		}

		user, err := a.svc.Authenticate(r.Context(), token)
		if err != nil {
			return err
		}
		return next(w, r, user)
	}
}

// IsLoggedIn определяет пользователя, если это возможно, и никогда не отклоняет запрос.
// Сначала проверяется cookie, затем заголовок.
func (a *Authenticator) IsLoggedIn(next OptionalHandler) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		const op = "middlewarectx.IsLoggedIn"

		token := a.fromCookie(r)
		if token == "" {
			token = bearer(r)
		}
		if token == "" {
			return next(w, r, nil)
		}

		user, err := a.svc.Authenticate(r.Context(), token)
		if err != nil {
			a.log.Debug("session not resolved",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("kind", apperr.KindOf(err).String()),
			)
			return next(w, r, nil)
		}
		return next(w, r, user)
	}
}

// RestrictTo допускает к next только пользователей с ролями из roles.
func RestrictTo(roles models.RoleSet, next AuthedHandler) AuthedHandler {
	return func(w http.ResponseWriter, r *http.Request, user *models.User) error {
		if user == nil || !roles.Has(user.Role) {
			return apperr.Forbidden(MsgForbidden)
		}
		return next(w, r, user)
	}
}

// WithoutIdentity адаптирует обработчик, которому пользователь не нужен.
func WithoutIdentity(next response.HandlerFunc) AuthedHandler {
	return func(w http.ResponseWriter, r *http.Request, _ *models.User) error {
		return next(w, r)
	}
}

func bearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func (a *Authenticator) fromCookie(r *http.Request) string {
	c, err := r.Cookie(a.cookie)
	if err != nil {
		return ""
	}
	return c.Value
}
