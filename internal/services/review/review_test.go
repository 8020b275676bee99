package review

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) review(args mock.Arguments) (*models.Review, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *RepoMock) ListReviews(ctx context.Context, tourID string, values url.Values) ([]query.Document, error) {
	args := m.Called(ctx, tourID, values)
	return args.Get(0).([]query.Document), args.Error(1)
}

func (m *RepoMock) GetReview(ctx context.Context, id string) (*models.Review, error) {
	return m.review(m.Called(ctx, id))
}

func (m *RepoMock) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	return m.review(m.Called(ctx, in))
}

func (m *RepoMock) UpdateReview(ctx context.Context, id string, patch models.ReviewPatch) (*models.Review, error) {
	return m.review(m.Called(ctx, id, patch))
}

func (m *RepoMock) DeleteReview(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(ctx context.Context, tourID string) {
	m.Called(ctx, tourID)
}

func newService() (*Service, *RepoMock, *InvalidatorMock) {
	repo := new(RepoMock)
	inv := new(InvalidatorMock)
	return NewService(repo, inv, slog.New(slog.NewTextHandler(io.Discard, nil))), repo, inv
}

var (
	author = &models.User{ID: "u1", Role: models.RoleUser}
	other  = &models.User{ID: "u2", Role: models.RoleUser}
	admin  = &models.User{ID: "a1", Role: models.RoleAdmin}
)

func TestService_Create(t *testing.T) {
	tests := []struct {
		name     string
		actor    *models.User
		path     string
		in       models.ReviewInput
		wantIn   models.ReviewInput
		wantKind apperr.Kind
		wantErr  bool
	}{
		{
			name:   "tour from path and user from session",
			actor:  author,
			path:   "t1",
			in:     models.ReviewInput{Review: "Great", Rating: 5},
			wantIn: models.ReviewInput{Review: "Great", Rating: 5, TourID: "t1", UserID: "u1"},
		},
		{
			name:   "explicit tour wins over path",
			actor:  author,
			path:   "t1",
			in:     models.ReviewInput{Review: "Great", Rating: 5, TourID: "t9"},
			wantIn: models.ReviewInput{Review: "Great", Rating: 5, TourID: "t9", UserID: "u1"},
		},
		{
			name:     "no tour",
			actor:    author,
			in:       models.ReviewInput{Review: "Great", Rating: 5},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "posting as someone else",
			actor:    author,
			path:     "t1",
			in:       models.ReviewInput{Review: "Great", Rating: 5, UserID: "u2"},
			wantErr:  true,
			wantKind: apperr.KindForbidden,
		},
		{
			name:     "admin posting for a user",
			actor:    admin,
			path:     "t1",
			in:       models.ReviewInput{Review: "Great", Rating: 5, UserID: "u1"},
			wantErr:  true,
			wantKind: apperr.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, inv := newService()
			if !tt.wantErr {
				repo.On("CreateReview", mock.Anything, tt.wantIn).
					Return(&models.Review{ID: "r1", TourID: tt.wantIn.TourID, UserID: tt.wantIn.UserID}, nil).Once()
				inv.On("Invalidate", mock.Anything, tt.wantIn.TourID).Once()
			}

			got, err := svc.Create(context.Background(), tt.actor, tt.path, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				repo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "r1", got.ID)
			repo.AssertExpectations(t)
			inv.AssertExpectations(t)
		})
	}
}

func TestService_UpdateOwnership(t *testing.T) {
	rating := 3
	patch := models.ReviewPatch{Rating: &rating}

	tests := []struct {
		name    string
		actor   *models.User
		allowed bool
	}{
		{name: "author", actor: author, allowed: true},
		{name: "admin", actor: admin, allowed: true},
		{name: "another user", actor: other, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, inv := newService()
			repo.On("GetReview", mock.Anything, "r1").Return(&models.Review{ID: "r1", TourID: "t1", UserID: "u1"}, nil).Once()
			if tt.allowed {
				repo.On("UpdateReview", mock.Anything, "r1", patch).Return(&models.Review{ID: "r1", TourID: "t1", Rating: 3}, nil).Once()
				inv.On("Invalidate", mock.Anything, "t1").Once()
			}

			_, err := svc.Update(context.Background(), tt.actor, "r1", patch)
			if tt.allowed {
				require.NoError(t, err)
			} else {
				assert.True(t, apperr.Is(err, apperr.KindForbidden))
				repo.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	svc, repo, inv := newService()
	repo.On("GetReview", mock.Anything, "r1").Return(&models.Review{ID: "r1", TourID: "t1", UserID: "u1"}, nil).Once()
	repo.On("DeleteReview", mock.Anything, "r1").Return(nil).Once()
	inv.On("Invalidate", mock.Anything, "t1").Once()

	require.NoError(t, svc.Delete(context.Background(), author, "r1"))
	repo.AssertExpectations(t)
	inv.AssertExpectations(t)
}

func TestService_DeleteMissing(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("GetReview", mock.Anything, "r1").Return(nil, apperr.NotFound("no review found with that id")).Once()

	err := svc.Delete(context.Background(), admin, "r1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_ListNested(t *testing.T) {
	svc, repo, _ := newService()
	docs := []query.Document{{"id": "r1", "tour": "t1"}}
	repo.On("ListReviews", mock.Anything, "t1", url.Values{}).Return(docs, nil).Once()

	got, err := svc.List(context.Background(), "t1", url.Values{})
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}
