package review

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
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/config"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, tourID string, values url.Values) ([]query.Document, error) {
	args := m.Called(ctx, tourID, values)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]query.Document), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, actor *models.User, pathTourID string, in models.ReviewInput) (*models.Review, error) {
	args := m.Called(ctx, actor, pathTourID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, actor *models.User, id string, patch models.ReviewPatch) (*models.Review, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, actor *models.User, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

var author = &models.User{ID: "u1", Role: models.RoleUser}

func newRouter(h *Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wrap := func(fn func(http.ResponseWriter, *http.Request, *models.User) error) http.HandlerFunc {
		return response.Handle(logger, config.EnvProd, func(w http.ResponseWriter, r *http.Request) error {
			return fn(w, r, author)
		})
	}

	r := chi.NewRouter()
	r.Get("/tours/{tourId}/reviews", response.Handle(logger, config.EnvProd, h.List))
	r.Post("/tours/{tourId}/reviews", wrap(h.Create))
	r.Get("/reviews", response.Handle(logger, config.EnvProd, h.List))
	r.Patch("/reviews/{id}", wrap(h.Update))
	r.Delete("/reviews/{id}", wrap(h.Delete))
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

func newHandler(svc Service) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
}

func TestList_Nested(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, "t1", url.Values{}).Return([]query.Document{{"id": "r1"}}, nil).Once()
	svc.On("List", mock.Anything, "", url.Values{"rating": {"5"}}).Return([]query.Document{}, nil).Once()
	router := newRouter(newHandler(svc))

	w := do(router, http.MethodGet, "/tours/t1/reviews", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","results":1,"data":{"reviews":[{"id":"r1"}]}}`, w.Body.String())

	w = do(router, http.MethodGet, "/reviews?rating=5", nil)
	assert.JSONEq(t, `{"status":"success","results":0,"data":{"reviews":[]}}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCreate_PassesPathTour(t *testing.T) {
	in := models.ReviewInput{Review: "Amazing", Rating: 5}
	svc := new(MockService)
	svc.On("Create", mock.Anything, author, "t1", in).
		Return(&models.Review{ID: "r1", Review: "Amazing", Rating: 5, TourID: "t1", UserID: "u1"}, nil).Once()

	w := do(newRouter(newHandler(svc)), http.MethodPost, "/tours/t1/reviews", in)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestCreate_Duplicate(t *testing.T) {
	in := models.ReviewInput{Review: "Again", Rating: 4}
	svc := new(MockService)
	svc.On("Create", mock.Anything, author, "t1", in).
		Return(nil, apperr.DuplicateKey("you have already reviewed this tour")).Once()

	w := do(newRouter(newHandler(svc)), http.MethodPost, "/tours/t1/reviews", in)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"you have already reviewed this tour"}`, w.Body.String())
}

func TestUpdate_Forbidden(t *testing.T) {
	rating := 1
	svc := new(MockService)
	svc.On("Update", mock.Anything, author, "r9", models.ReviewPatch{Rating: &rating}).
		Return(nil, apperr.Forbidden("you do not have permission to do this action")).Once()

	w := do(newRouter(newHandler(svc)), http.MethodPatch, "/reviews/r9", map[string]any{"rating": 1})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDelete(t *testing.T) {
	svc := new(MockService)
	svc.On("Delete", mock.Anything, author, "r1").Return(nil).Once()

	w := do(newRouter(newHandler(svc)), http.MethodDelete, "/reviews/r1", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
