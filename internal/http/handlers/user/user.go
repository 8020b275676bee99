// Package user реализует обработчики собственного профиля пользователя
// и проверку сессии для клиентских страниц.
package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tourbooking/internal/http/request"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
)

// Service описывает операции над собственным профилем.
type Service interface {
	Me(ctx context.Context, actor *models.User) (*models.User, error)
	UpdateMe(ctx context.Context, actor *models.User, in models.UpdateMeInput) (*models.User, error)
	DeleteMe(ctx context.Context, actor *models.User) error
}

// Handler обрабатывает запросы к профилю текущего пользователя.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// Me godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, user *models.User) error {
	me, err := h.svc.Me(r.Context(), user)
	if err != nil {
		return err
	}
	response.OK(w, r, http.StatusOK, map[string]any{"user": me})
	return nil
}

// UpdateMe godoc
// @Summary Изменить имя и email
// @Description Пароль этим маршрутом не меняется.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.UpdateMeInput true "Новые имя и email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.ErrorResponse "Попытка сменить пароль или ошибка валидации"
// @Router /users/update-me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request, user *models.User) error {
	const op = "handlers.user.UpdateMe"

	var in models.UpdateMeInput
	if err := request.DecodeValid(r, &in); err != nil {
		return err
	}
	updated, err := h.svc.UpdateMe(r.Context(), user, in)
	if err != nil {
		return err
	}

	h.log.Info("profile updated",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", user.ID),
	)
	response.OK(w, r, http.StatusOK, map[string]any{"user": updated})
	return nil
}

// DeleteMe godoc
// @Summary Деактивировать свою учётную запись
// @Tags Users
// @Security BearerAuth
// @Success 204
// @Router /users/delete-me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request, user *models.User) error {
	if err := h.svc.DeleteMe(r.Context(), user); err != nil {
		return err
	}
	response.NoContent(w, r)
	return nil
}

// Session godoc
// @Summary Текущая сессия
// @Description Никогда не отклоняет запрос; без действующей сессии user равен null.
// @Tags Users
// @Produce  json
// @Success 200 {object} response.Envelope
// @Router /users/session [get]
func (h *Handler) Session(w http.ResponseWriter, r *http.Request, user *models.User) error {
	response.OK(w, r, http.StatusOK, map[string]any{"user": user})
	return nil
}
