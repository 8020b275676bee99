// Package response содержит единый формат JSON-ответов и центральный
// транслятор ошибок: каждая ошибка слоя сервисов превращается здесь
// в HTTP-статус и тело ответа.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/config"
	"github.com/magabrotheeeer/tourbooking/internal/lib/sl"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

const (
	// StatusSuccess успешный ответ.
	StatusSuccess = "success"
	// StatusFail ошибка клиента (4xx).
	StatusFail = "fail"
	// StatusError ошибка сервера (5xx).
	StatusError = "error"

	// MsgInternal заменяет текст непредвиденных ошибок вне режима разработки.
	MsgInternal = "something went very wrong"
)

// Envelope описывает стандартную структуру JSON-ответа сервера.
type Envelope struct {
	Status  string            `json:"status" example:"success"`
	Results *int              `json:"results,omitempty"`
	Token   string            `json:"token,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// ErrorResponse — тело ответа с ошибкой, используется в документации API.
type ErrorResponse struct {
	Status  string `json:"status" example:"fail"`
	Message string `json:"message" example:"invalid id"`
}

// HandlerFunc — обработчик, возвращающий ошибку вместо самостоятельной записи ответа.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle превращает HandlerFunc в http.HandlerFunc. Все ошибки проходят через Error.
func Handle(log *slog.Logger, env string, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Error(w, r, log, env, err)
		}
	}
}

// OK пишет успешный ответ с заданным статусом и данными.
func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Status: StatusSuccess, Data: data})
}

// List пишет список документов с их количеством под ключом key.
func List(w http.ResponseWriter, r *http.Request, key string, docs []query.Document) {
	n := len(docs)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Envelope{
		Status:  StatusSuccess,
		Results: &n,
		Data:    map[string]any{key: docs},
	})
}

// WithToken пишет ответ сессии: токен и данные пользователя.
func WithToken(w http.ResponseWriter, r *http.Request, status int, token string, data any) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Status: StatusSuccess, Token: token, Data: data})
}

// Message пишет успешный ответ с текстовым сообщением и необязательными данными.
func Message(w http.ResponseWriter, r *http.Request, msg string, data any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Envelope{Status: StatusSuccess, Message: msg, Data: data})
}

// NoContent пишет пустой ответ 204.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

// Fail пишет ответ с ошибкой клиента или сервера без участия apperr.
func Fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Status: statusText(status), Message: msg})
}

// StatusFor возвращает HTTP-статус для вида ошибки.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindDuplicateKey:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated, apperr.KindInvalidToken:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error центральный транслятор ошибок.
// Сообщения apperr отдаются клиенту как есть. Посторонние ошибки в prod
// заменяются на MsgInternal; в local и dev отдаётся полный текст с причиной.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, env string, err error) {
	log = log.With(slog.String("request_id", middleware.GetReqID(r.Context())))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		err = ValidationError(verrs)
	}

	appErr, known := apperr.As(err)
	if !known {
		appErr = apperr.Internal(MsgInternal, err)
	}

	status := StatusFor(appErr.Kind)
	body := Envelope{
		Status:  statusText(status),
		Message: appErr.Message,
		Errors:  appErr.Fields,
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("kind", appErr.Kind.String()), sl.Err(err))
		switch {
		case env == config.EnvLocal || env == config.EnvDev:
			body.Message = appErr.Error()
		case !known:
			body.Message = MsgInternal
		}
	} else {
		log.Info("request rejected", slog.String("kind", appErr.Kind.String()), sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}

// ValidationError формирует ошибку валидации из нарушений validator.
// Каждое нарушение формируется в человеко-читаемый текст по имени JSON-поля.
func ValidationError(errs validator.ValidationErrors) *apperr.Error {
	fields := make(map[string]string, len(errs))
	msgs := make([]string, 0, len(errs))

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("%s is required", err.Field())
		case "email":
			msg = "please provide a valid email"
		case "uuid":
			msg = fmt.Sprintf("%s must be a valid id", err.Field())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			msg = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		default:
			msg = fmt.Sprintf("%s is not valid", err.Field())
		}
		fields[err.Field()] = msg
		msgs = append(msgs, msg)
	}

	return apperr.Validation("invalid input data. "+strings.Join(msgs, ". "), fields)
}

func statusText(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return StatusError
	case status >= http.StatusBadRequest:
		return StatusFail
	default:
		return StatusSuccess
	}
}
