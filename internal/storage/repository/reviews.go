package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

const (
	reviewColumns  = `id::text, review, rating, tour_id::text, user_id::text, created_at`
	reviewNotFound = "no review found with that id"

	// recalcRatings пересчитывает средний рейтинг и число отзывов тура.
	// Без отзывов рейтинг возвращается к значению по умолчанию.
	recalcRatings = `UPDATE tours
		SET ratings_quantity = s.n, ratings_average = s.avg
		FROM (SELECT count(*)::int AS n,
		             COALESCE(round(avg(rating)::numeric, 1)::float8, 4.5) AS avg
		      FROM reviews WHERE tour_id = $1) AS s
		WHERE tours.id = $1`
)

func scanReview(row pgx.Row) (*models.Review, error) {
	r := &models.Review{}
	if err := row.Scan(&r.ID, &r.Review, &r.Rating, &r.TourID, &r.UserID, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReview сохраняет отзыв и пересчитывает рейтинг тура в одной транзакции.
func (s *Storage) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	const op = "storage.CreateReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	var review *models.Review
	err := s.inTx(ctx, func(tx DBTX) error {
		q := `INSERT INTO reviews (id, review, rating, tour_id, user_id)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + reviewColumns
		r, err := scanReview(tx.QueryRow(ctx, q, uuid.NewString(), in.Review, in.Rating, in.TourID, in.UserID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, recalcRatings, r.TourID); err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, reviewNotFound))
	}
	return review, nil
}

// GetReview возвращает отзыв по id.
func (s *Storage) GetReview(ctx context.Context, id string) (*models.Review, error) {
	const op = "storage.GetReview"
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	r, err := scanReview(s.DB.QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, reviewNotFound))
	}
	return r, nil
}

// UpdateReview изменяет текст или оценку и пересчитывает рейтинг тура.
func (s *Storage) UpdateReview(ctx context.Context, id string, patch models.ReviewPatch) (*models.Review, error) {
	const op = "storage.UpdateReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	set := newSetList(id)
	add(set, "review", patch.Review)
	add(set, "rating", patch.Rating)
	if set.empty() {
		return s.GetReview(ctx, id)
	}

	var review *models.Review
	err := s.inTx(ctx, func(tx DBTX) error {
		q := `UPDATE reviews SET ` + set.sql() + ` WHERE id = $1 RETURNING ` + reviewColumns
		r, err := scanReview(tx.QueryRow(ctx, q, set.args...))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, recalcRatings, r.TourID); err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, reviewNotFound))
	}
	return review, nil
}

// DeleteReview удаляет отзыв и пересчитывает рейтинг тура.
func (s *Storage) DeleteReview(ctx context.Context, id string) error {
	const op = "storage.DeleteReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	err := s.inTx(ctx, func(tx DBTX) error {
		var tourID string
		if err := tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING tour_id::text`, id).Scan(&tourID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, recalcRatings, tourID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err, reviewNotFound))
	}
	return nil
}

// ListReviews возвращает страницу отзывов; при непустом tourID только отзывы этого тура.
func (s *Storage) ListReviews(ctx context.Context, tourID string, values url.Values) ([]query.Document, error) {
	const op = "storage.ListReviews"
	b := query.New(s.DB, ReviewSchema, values, s.Limits)
	if tourID != "" {
		b = b.Where("tour", tourID)
	}
	docs, err := b.Filter().Sort().LimitFields().Paginate().Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, reviewNotFound))
	}
	return docs, nil
}
