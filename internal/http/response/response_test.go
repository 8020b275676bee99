package response

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/config"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id")
	return req.WithContext(ctx)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindDuplicateKey, http.StatusBadRequest},
		{apperr.KindUnauthenticated, http.StatusUnauthorized},
		{apperr.KindInvalidToken, http.StatusUnauthorized},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.kind))
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		err         error
		wantStatus  int
		wantStatusS string
		wantMessage string
	}{
		{
			name:        "not found",
			env:         config.EnvProd,
			err:         apperr.NotFound("no tour found with that id"),
			wantStatus:  http.StatusNotFound,
			wantStatusS: StatusFail,
			wantMessage: "no tour found with that id",
		},
		{
			name:        "duplicate key",
			env:         config.EnvProd,
			err:         apperr.DuplicateKey("duplicate field value: The Forest Hiker. Please use another value!"),
			wantStatus:  http.StatusBadRequest,
			wantStatusS: StatusFail,
			wantMessage: "duplicate field value: The Forest Hiker. Please use another value!",
		},
		{
			name:        "invalid token",
			env:         config.EnvProd,
			err:         apperr.InvalidToken("invalid token. Please log in again!", errors.New("signature is invalid")),
			wantStatus:  http.StatusUnauthorized,
			wantStatusS: StatusFail,
			wantMessage: "invalid token. Please log in again!",
		},
		{
			name:        "unknown error hidden in prod",
			env:         config.EnvProd,
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantStatusS: StatusError,
			wantMessage: MsgInternal,
		},
		{
			name:        "operational internal error keeps its message",
			env:         config.EnvProd,
			err:         apperr.Internal("there was an error sending the email. Try again later!", errors.New("amqp closed")),
			wantStatus:  http.StatusInternalServerError,
			wantStatusS: StatusError,
			wantMessage: "there was an error sending the email. Try again later!",
		},
		{
			name:        "unknown error shown in dev",
			env:         config.EnvDev,
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantStatusS: StatusError,
			wantMessage: "something went very wrong: pq: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Handle(newNoopLogger(), tt.env, func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})
			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest())

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.wantStatusS, body["status"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestHandle_ValidationFields(t *testing.T) {
	h := Handle(newNoopLogger(), config.EnvProd, func(http.ResponseWriter, *http.Request) error {
		return apperr.Validation("invalid input data. rating must be between 1 and 5", map[string]string{
			"rating": "rating must be between 1 and 5",
		})
	})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]any{"rating": "rating must be between 1 and 5"}, body["errors"])
}

func TestHandle_Success(t *testing.T) {
	h := Handle(newNoopLogger(), config.EnvProd, func(w http.ResponseWriter, r *http.Request) error {
		OK(w, r, http.StatusCreated, map[string]any{"tour": map[string]any{"name": "The Sea Explorer"}})
		return nil
	})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"tour":{"name":"The Sea Explorer"}}}`, w.Body.String())
}

func TestList_EmptyHasZeroResults(t *testing.T) {
	w := httptest.NewRecorder()
	List(w, newRequest(), "tours", []query.Document{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","results":0,"data":{"tours":[]}}`, w.Body.String())
}

func TestWithToken(t *testing.T) {
	w := httptest.NewRecorder()
	WithToken(w, newRequest(), http.StatusOK, "tok", map[string]any{"user": map[string]any{"id": "u1"}})

	assert.JSONEq(t, `{"status":"success","token":"tok","data":{"user":{"id":"u1"}}}`, w.Body.String())
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w, newRequest())

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestFail(t *testing.T) {
	w := httptest.NewRecorder()
	Fail(w, newRequest(), http.StatusTooManyRequests, "too many requests from this IP, please try again in an hour!")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"too many requests from this IP, please try again in an hour!"}`, w.Body.String())
}
