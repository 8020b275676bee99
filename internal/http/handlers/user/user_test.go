package user

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/config"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) UpdateMe(ctx context.Context, actor *models.User, in models.UpdateMeInput) (*models.User, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) DeleteMe(ctx context.Context, actor *models.User) error {
	return m.Called(ctx, actor).Error(0)
}

var jonas = &models.User{ID: "u1", Name: "Jonas", Email: "jonas@example.com", Role: models.RoleUser}

func serve(fn func(http.ResponseWriter, *http.Request, *models.User) error, user *models.User, method string, body any) *httptest.ResponseRecorder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1/users/me", reader)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id"))
	w := httptest.NewRecorder()
	response.Handle(logger, config.EnvProd, func(w http.ResponseWriter, r *http.Request) error {
		return fn(w, r, user)
	}).ServeHTTP(w, req)
	return w
}

func newHandler(svc Service) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
}

func TestMe(t *testing.T) {
	svc := new(MockService)
	svc.On("Me", mock.Anything, jonas).Return(jonas, nil).Once()

	w := serve(newHandler(svc).Me, jonas, http.MethodGet, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"jonas@example.com"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUpdateMe(t *testing.T) {
	name := "Jonas S"
	tests := []struct {
		name           string
		body           map[string]any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: map[string]any{"name": name},
			setupMock: func(m *MockService) {
				m.On("UpdateMe", mock.Anything, jonas, models.UpdateMeInput{Name: &name}).
					Return(&models.User{ID: "u1", Name: name, Email: "jonas@example.com", Role: models.RoleUser}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "password fields rejected",
			body: map[string]any{"password": "newpass123", "passwordConfirm": "newpass123"},
			setupMock: func(m *MockService) {
				m.On("UpdateMe", mock.Anything, jonas, models.UpdateMeInput{Password: "newpass123", PasswordConfirm: "newpass123"}).
					Return(nil, apperr.Validation("This route is not for updating password please use /update-password", nil)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"fail","message":"This route is not for updating password please use /update-password"}`,
		},
		{
			name:           "bad email",
			body:           map[string]any{"email": "nope"},
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"fail","message":"invalid input data. please provide a valid email","errors":{"email":"please provide a valid email"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := serve(newHandler(svc).UpdateMe, jonas, http.MethodPatch, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDeleteMe(t *testing.T) {
	svc := new(MockService)
	svc.On("DeleteMe", mock.Anything, jonas).Return(nil).Once()

	w := serve(newHandler(svc).DeleteMe, jonas, http.MethodDelete, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSession(t *testing.T) {
	h := newHandler(new(MockService))

	w := serve(h.Session, nil, http.MethodGet, nil)
	assert.JSONEq(t, `{"status":"success","data":{"user":null}}`, w.Body.String())

	w = serve(h.Session, jonas, http.MethodGet, nil)
	assert.Contains(t, w.Body.String(), `"id":"u1"`)
}
