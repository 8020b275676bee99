// Package review содержит бизнес-логику отзывов о турах.
package review

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// Repository определяет методы работы с отзывами в хранилище.
type Repository interface {
	ListReviews(ctx context.Context, tourID string, values url.Values) ([]query.Document, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, id string, patch models.ReviewPatch) (*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// TourInvalidator сбрасывает закешированный тур, рейтинг которого изменился.
type TourInvalidator interface {
	Invalidate(ctx context.Context, tourID string)
}

// Сообщения об ошибках отзывов.
const (
	MsgNoTour       = "review must belong to a tour"
	MsgOnlyYourself = "you can only post reviews as yourself"
	MsgNotOwner     = "you do not have permission to do this action"
)

// Service реализует операции с отзывами.
type Service struct {
	repo  Repository
	tours TourInvalidator
	log   *slog.Logger
}

// NewService создаёт Service. tours может быть nil.
func NewService(repo Repository, tours TourInvalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, tours: tours, log: log}
}

// List возвращает отзывы; при непустом tourID только отзывы этого тура.
func (s *Service) List(ctx context.Context, tourID string, values url.Values) ([]query.Document, error) {
	return s.repo.ListReviews(ctx, tourID, values)
}

// Get возвращает отзыв по id.
func (s *Service) Get(ctx context.Context, id string) (*models.Review, error) {
	return s.repo.GetReview(ctx, id)
}

// Create сохраняет отзыв автора actor. Тур по умолчанию берётся из пути запроса,
// автора из сессии.
func (s *Service) Create(ctx context.Context, actor *models.User, pathTourID string, in models.ReviewInput) (*models.Review, error) {
	const op = "review.Create"
	if in.TourID == "" {
		in.TourID = pathTourID
	}
	if in.TourID == "" {
		return nil, apperr.Validation("invalid input data. "+MsgNoTour, map[string]string{"tour": MsgNoTour})
	}
	if in.UserID == "" {
		in.UserID = actor.ID
	}
	if in.UserID != actor.ID {
		return nil, apperr.Forbidden(MsgOnlyYourself)
	}

	review, err := s.repo.CreateReview(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new review", slog.String("op", op), slog.String("id", review.ID))
	s.invalidate(ctx, review.TourID)
	return review, nil
}

// Update изменяет отзыв. Чужие отзывы может менять только администратор.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, patch models.ReviewPatch) (*models.Review, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	review, err := s.repo.UpdateReview(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, review.TourID)
	return review, nil
}

// Delete удаляет отзыв. Чужие отзывы может удалять только администратор.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	review, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, review.TourID)
	return nil
}

func (s *Service) owned(ctx context.Context, actor *models.User, id string) (*models.Review, error) {
	review, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && review.UserID != actor.ID {
		return nil, apperr.Forbidden(MsgNotOwner)
	}
	return review, nil
}

func (s *Service) invalidate(ctx context.Context, tourID string) {
	if s.tours != nil {
		s.tours.Invalidate(ctx, tourID)
	}
}
