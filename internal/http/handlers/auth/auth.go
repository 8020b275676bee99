// Package auth реализует HTTP-обработчики регистрации, входа, выхода
// и восстановления пароля. Каждый успешный вход выставляет httpOnly cookie
// с токеном и возвращает тот же токен в теле ответа.
package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tourbooking/internal/http/request"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
)

// MsgTokenSent — ответ на успешный запрос сброса пароля.
const MsgTokenSent = "Token sent to email"

// Handler обрабатывает HTTP-запросы аутентификации.
type Handler struct {
	log              *slog.Logger
	svc              Service
	cookie           CookieConfig
	exposeResetToken bool
	now              func() time.Time
}

// New создаёт Handler. При exposeResetToken сырой токен сброса
// возвращается в ответе; включается только в режиме разработки.
func New(log *slog.Logger, svc Service, cookie CookieConfig, exposeResetToken bool) *Handler {
	return &Handler{
		log:              log,
		svc:              svc,
		cookie:           cookie,
		exposeResetToken: exposeResetToken,
		now:              time.Now,
	}
}

// Signup godoc
// @Summary Регистрация нового пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.SignupInput true "Данные нового пользователя"
// @Success 201 {object} response.Envelope "Пользователь создан, выдан токен"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или дубликат email"
// @Router /users/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.Signup"

	var in models.SignupInput
	if err := request.DecodeValid(r, &in); err != nil {
		return err
	}

	sess, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		return err
	}

	h.logger(op, r).Info("user signed up", slog.String("id", sess.User.ID))
	h.sendSession(w, r, http.StatusCreated, sess)
	return nil
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.LoginInput true "Учетные данные"
// @Success 200 {object} response.Envelope "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Не переданы email или пароль"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Router /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.Login"

	var in models.LoginInput
	if err := request.Decode(r, &in); err != nil {
		return err
	}

	sess, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	h.logger(op, r).Info("login success", slog.String("id", sess.User.ID))
	h.sendSession(w, r, http.StatusOK, sess)
	return nil
}

// Logout godoc
// @Summary Выход
// @Description Перезаписывает cookie сессии значением, которое истекает через 10 секунд.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Envelope
// @Router /users/logout [get]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	h.clearSession(w)
	response.OK(w, r, http.StatusOK, nil)
	return nil
}

// ForgotPassword godoc
// @Summary Запрос ссылки для сброса пароля
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.ForgotPasswordInput true "Email пользователя"
// @Success 200 {object} response.Envelope "Ссылка отправлена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Не удалось отправить ссылку"
// @Router /users/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.ForgotPassword"

	var in models.ForgotPasswordInput
	if err := request.DecodeValid(r, &in); err != nil {
		return err
	}

	raw, err := h.svc.ForgotPassword(r.Context(), in.Email)
	if err != nil {
		return err
	}

	h.logger(op, r).Info("reset token issued")
	var data any
	if h.exposeResetToken {
		data = map[string]any{"resetToken": raw}
	}
	response.Message(w, r, MsgTokenSent, data)
	return nil
}

// ResetPassword godoc
// @Summary Сброс пароля по токену
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param token path string true "Токен сброса"
// @Param request body models.ResetPasswordInput true "Новый пароль"
// @Success 200 {object} response.Envelope "Пароль изменён, выдан токен"
// @Failure 400 {object} response.ErrorResponse "Токен недействителен или истёк"
// @Router /users/reset-password/{token} [patch]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.auth.ResetPassword"

	var in models.ResetPasswordInput
	if err := request.DecodeValid(r, &in); err != nil {
		return err
	}

	sess, err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "token"), in)
	if err != nil {
		return err
	}

	h.logger(op, r).Info("password reset", slog.String("id", sess.User.ID))
	h.sendSession(w, r, http.StatusOK, sess)
	return nil
}

// UpdatePassword godoc
// @Summary Смена пароля текущего пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.UpdatePasswordInput true "Текущий и новый пароль"
// @Success 200 {object} response.Envelope "Пароль изменён, выдан новый токен"
// @Failure 401 {object} response.ErrorResponse "Текущий пароль неверен"
// @Router /users/update-password [patch]
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request, user *models.User) error {
	const op = "handlers.auth.UpdatePassword"

	var in models.UpdatePasswordInput
	if err := request.DecodeValid(r, &in); err != nil {
		return err
	}

	sess, err := h.svc.UpdatePassword(r.Context(), user.ID, in)
	if err != nil {
		return err
	}

	h.logger(op, r).Info("password updated", slog.String("id", user.ID))
	h.sendSession(w, r, http.StatusOK, sess)
	return nil
}

func (h *Handler) logger(op string, r *http.Request) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}
