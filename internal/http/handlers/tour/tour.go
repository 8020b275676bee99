// Package tour реализует обработчики туров, которые не сводятся к типовым:
// подборку пяти лучших дешёвых туров, статистику по сложности и план стартов по месяцам.
package tour

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// Service описывает интерфейс бизнес-логики туров.
type Service interface {
	TopCheap(ctx context.Context, values url.Values) ([]query.Document, error)
	Stats(ctx context.Context) ([]models.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error)
}

// YearParam параметр пути с годом плана.
const YearParam = "year"

// Handler обрабатывает специальные запросы к турам.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// TopCheap godoc
// @Summary Пять лучших дешёвых туров
// @Description Список с предустановленными сортировкой, лимитом и набором полей.
// @Tags Tours
// @Produce  json
// @Success 200 {object} response.Envelope
// @Router /tours/top-5-cheap [get]
func (h *Handler) TopCheap(w http.ResponseWriter, r *http.Request) error {
	docs, err := h.svc.TopCheap(r.Context(), r.URL.Query())
	if err != nil {
		return err
	}
	response.List(w, r, "tours", docs)
	return nil
}

// Stats godoc
// @Summary Статистика туров по сложности
// @Tags Tours
// @Produce  json
// @Success 200 {object} response.Envelope
// @Router /tours/tour-stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.tour.Stats"

	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		return err
	}
	h.log.Debug("tour stats computed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("groups", len(stats)),
	)
	response.OK(w, r, http.StatusOK, map[string]any{"stats": stats})
	return nil
}

// MonthlyPlan godoc
// @Summary План стартов туров по месяцам
// @Description Доступно администраторам и гидам.
// @Tags Tours
// @Produce  json
// @Param year path int true "Год"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /tours/monthly-plan/{year} [get]
func (h *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) error {
	const op = "handlers.tour.MonthlyPlan"

	raw := chi.URLParam(r, YearParam)
	year, err := strconv.Atoi(raw)
	if err != nil {
		return apperr.Validation("invalid year: "+raw, map[string]string{YearParam: "must be a number"})
	}

	plan, err := h.svc.MonthlyPlan(r.Context(), year)
	if err != nil {
		return err
	}
	h.log.Debug("monthly plan computed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("year", year),
		slog.Int("months", len(plan)),
	)
	response.OK(w, r, http.StatusOK, map[string]any{"plan": plan})
	return nil
}
