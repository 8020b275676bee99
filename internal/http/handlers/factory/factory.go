// Package factory собирает типовые обработчики ресурсов: список, получение,
// создание, обновление и удаление по id. Обработчики конкретных ресурсов
// получаются подстановкой функций сервиса.
package factory

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tourbooking/internal/http/request"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// IDParam имя параметра пути с идентификатором документа.
const IDParam = "id"

// ListFunc возвращает документы коллекции по параметрам запроса.
type ListFunc func(ctx context.Context, values url.Values) ([]query.Document, error)

// GetAll отдаёт список документов под ключом key вместе с их числом.
func GetAll(log *slog.Logger, key string, list ListFunc) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		docs, err := list(r.Context(), r.URL.Query())
		if err != nil {
			return err
		}
		logger(log, "handlers.factory.GetAll", r).Debug("documents listed",
			slog.String("collection", key), slog.Int("results", len(docs)))
		response.List(w, r, key, docs)
		return nil
	}
}

// GetOne отдаёт документ по id под ключом key.
func GetOne[T any](key string, get func(ctx context.Context, id string) (T, error)) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		doc, err := get(r.Context(), chi.URLParam(r, IDParam))
		if err != nil {
			return err
		}
		response.OK(w, r, http.StatusOK, map[string]any{key: doc})
		return nil
	}
}

// CreateOne проверяет тело запроса и создаёт документ. Отвечает 201.
func CreateOne[In, T any](log *slog.Logger, key string, create func(ctx context.Context, in In) (T, error)) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var in In
		if err := request.DecodeValid(r, &in); err != nil {
			return err
		}
		doc, err := create(r.Context(), in)
		if err != nil {
			return err
		}
		logger(log, "handlers.factory.CreateOne", r).Info("document created", slog.String("collection", key))
		response.OK(w, r, http.StatusCreated, map[string]any{key: doc})
		return nil
	}
}

// UpdateOne применяет частичное обновление к документу с id из пути.
func UpdateOne[P, T any](log *slog.Logger, key string, update func(ctx context.Context, id string, patch P) (T, error)) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var patch P
		if err := request.DecodeValid(r, &patch); err != nil {
			return err
		}
		id := chi.URLParam(r, IDParam)
		doc, err := update(r.Context(), id, patch)
		if err != nil {
			return err
		}
		logger(log, "handlers.factory.UpdateOne", r).Info("document updated",
			slog.String("collection", key), slog.String("id", id))
		response.OK(w, r, http.StatusOK, map[string]any{key: doc})
		return nil
	}
}

// DeleteOne удаляет документ с id из пути. Отвечает 204 без тела.
func DeleteOne(log *slog.Logger, key string, del func(ctx context.Context, id string) error) response.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := chi.URLParam(r, IDParam)
		if err := del(r.Context(), id); err != nil {
			return err
		}
		logger(log, "handlers.factory.DeleteOne", r).Info("document deleted",
			slog.String("collection", key), slog.String("id", id))
		response.NoContent(w, r)
		return nil
	}
}

func logger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}
