// Package review реализует обработчики отзывов. Отзывы доступны как
// самостоятельная коллекция и как вложенная в тур (/tours/{tourId}/reviews).
package review

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tourbooking/internal/http/request"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// TourParam — параметр пути вложенного маршрута.
const TourParam = "tourId"

// Service описывает интерфейс бизнес-логики отзывов.
type Service interface {
	List(ctx context.Context, tourID string, values url.Values) ([]query.Document, error)
	Create(ctx context.Context, actor *models.User, pathTourID string, in models.ReviewInput) (*models.Review, error)
	Update(ctx context.Context, actor *models.User, id string, patch models.ReviewPatch) (*models.Review, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

// Handler обрабатывает запросы к отзывам.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// List godoc
// @Summary Список отзывов
// @Tags Reviews
// @Produce  json
// @Security BearerAuth
// @Param tourId path string false "ID тура для вложенного маршрута"
// @Success 200 {object} response.Envelope
// @Router /reviews [get]
// @Router /tours/{tourId}/reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	docs, err := h.svc.List(r.Context(), chi.URLParam(r, TourParam), r.URL.Query())
	if err != nil {
		return err
	}
	response.List(w, r, "reviews", docs)
	return nil
}

// Create godoc
// @Summary Создать отзыв
// @Description Тур берётся из пути, если не указан в теле; автор берётся из сессии.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ReviewInput true "Отзыв"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или повторный отзыв"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /reviews [post]
// @Router /tours/{tourId}/reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, user *models.User) error {
	const op = "handlers.review.Create"

	var in models.ReviewInput
	if err := request.DecodeValid(r, &in); err != nil {
		return err
	}

	review, err := h.svc.Create(r.Context(), user, chi.URLParam(r, TourParam), in)
	if err != nil {
		return err
	}

	h.log.Info("review created",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("id", review.ID),
	)
	response.OK(w, r, http.StatusCreated, map[string]any{"review": review})
	return nil
}

// Update godoc
// @Summary Изменить отзыв
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID отзыва"
// @Param request body models.ReviewPatch true "Изменяемые поля"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.ErrorResponse "Чужой отзыв"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Router /reviews/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, user *models.User) error {
	var patch models.ReviewPatch
	if err := request.DecodeValid(r, &patch); err != nil {
		return err
	}
	review, err := h.svc.Update(r.Context(), user, chi.URLParam(r, "id"), patch)
	if err != nil {
		return err
	}
	response.OK(w, r, http.StatusOK, map[string]any{"review": review})
	return nil
}

// Delete godoc
// @Summary Удалить отзыв
// @Tags Reviews
// @Security BearerAuth
// @Param id path string true "ID отзыва"
// @Success 204
// @Failure 403 {object} response.ErrorResponse "Чужой отзыв"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Router /reviews/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, user *models.User) error {
	if err := h.svc.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		return err
	}
	response.NoContent(w, r)
	return nil
}
