package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/config"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func route(method, pattern string, fn response.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Method(method, pattern, response.Handle(newNoopLogger(), config.EnvProd, fn))
	return r
}

func do(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetAll(t *testing.T) {
	var gotValues url.Values
	list := func(_ context.Context, values url.Values) ([]query.Document, error) {
		gotValues = values
		return []query.Document{{"id": "t1", "price": 997.0}, {"id": "t2", "price": 1497.0}}, nil
	}

	w := do(route(http.MethodGet, "/tours", GetAll(newNoopLogger(), "tours", list)),
		http.MethodGet, "/tours?price[gte]=500&sort=-price&limit=5&page=1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","results":2,"data":{"tours":[{"id":"t1","price":997},{"id":"t2","price":1497}]}}`, w.Body.String())
	assert.Equal(t, "500", gotValues.Get("price[gte]"))
	assert.Equal(t, "-price", gotValues.Get("sort"))
}

func TestGetAll_ValidationError(t *testing.T) {
	list := func(context.Context, url.Values) ([]query.Document, error) {
		return nil, apperr.Validation("invalid query parameter: unknown operator 'regex'", nil)
	}

	w := do(route(http.MethodGet, "/tours", GetAll(newNoopLogger(), "tours", list)), http.MethodGet, "/tours?name[regex]=x", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOne(t *testing.T) {
	get := func(_ context.Context, id string) (*models.Tour, error) {
		if id != "t1" {
			return nil, apperr.NotFound("no tour found with that id")
		}
		return &models.Tour{ID: "t1", Name: "The Forest Hiker"}, nil
	}
	h := route(http.MethodGet, "/tours/{id}", GetOne("tour", get))

	w := do(h, http.MethodGet, "/tours/t1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "The Forest Hiker", body["data"]["tour"]["name"])

	w = do(h, http.MethodGet, "/tours/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"no tour found with that id"}`, w.Body.String())
}

func TestCreateOne(t *testing.T) {
	var got models.ReviewInput
	create := func(_ context.Context, in models.ReviewInput) (*models.Review, error) {
		got = in
		return &models.Review{ID: "r1", Review: in.Review, Rating: in.Rating}, nil
	}
	h := route(http.MethodPost, "/reviews", CreateOne(newNoopLogger(), "review", create))

	w := do(h, http.MethodPost, "/reviews", map[string]any{"review": "Great", "rating": 5})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Great", got.Review)

	w = do(h, http.MethodPost, "/reviews", map[string]any{"review": "Great", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOne(t *testing.T) {
	update := func(_ context.Context, id string, patch models.TourPatch) (*models.Tour, error) {
		return &models.Tour{ID: id, Price: *patch.Price}, nil
	}
	h := route(http.MethodPatch, "/tours/{id}", UpdateOne(newNoopLogger(), "tour", update))

	w := do(h, http.MethodPatch, "/tours/t1", map[string]any{"price": 599})
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "t1", body["data"]["tour"]["id"])
	assert.Equal(t, 599.0, body["data"]["tour"]["price"])
}

func TestDeleteOne(t *testing.T) {
	deleted := ""
	del := func(_ context.Context, id string) error {
		if id == "missing" {
			return apperr.NotFound("no tour found with that id")
		}
		deleted = id
		return nil
	}
	h := route(http.MethodDelete, "/tours/{id}", DeleteOne(newNoopLogger(), "tour", del))

	w := do(h, http.MethodDelete, "/tours/t1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "t1", deleted)

	w = do(h, http.MethodDelete, "/tours/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
