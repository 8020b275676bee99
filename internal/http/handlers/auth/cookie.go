package auth

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	authservice "github.com/magabrotheeeer/tourbooking/internal/services/auth"
)

// LoggedOut — значение cookie после выхода.
const LoggedOut = "loggedout"

// CookieConfig задаёт параметры cookie сессии.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (h *Handler) sendSession(w http.ResponseWriter, r *http.Request, status int, sess *authservice.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.Token,
		Path:     "/",
		Expires:  h.now().Add(h.cookie.TTL),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	response.WithToken(w, r, status, sess.Token, map[string]any{"user": sess.User})
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    LoggedOut,
		Path:     "/",
		Expires:  h.now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
