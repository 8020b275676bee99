package repository

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

const (
	tourColumns = `id::text, name, slug, duration, max_group_size, difficulty, ratings_average,
			  ratings_quantity, price, price_discount, summary, description, secret_tour, start_dates, created_at`
	tourNotFound = "no tour found with that id"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify строит slug из названия тура.
func Slugify(name string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func scanTour(row pgx.Row) (*models.Tour, error) {
	t := &models.Tour{}
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
		&t.RatingsAverage, &t.RatingsQuantity, &t.Price, &t.PriceDiscount, &t.Summary,
		&t.Description, &t.SecretTour, &t.StartDates, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTour сохраняет новый тур.
func (s *Storage) CreateTour(ctx context.Context, in models.TourInput) (*models.Tour, error) {
	const op = "storage.CreateTour"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	q := `INSERT INTO tours (id, name, slug, duration, max_group_size, difficulty, price,
			  price_discount, summary, description, secret_tour, start_dates)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		  RETURNING ` + tourColumns
	t, err := scanTour(s.DB.QueryRow(ctx, q,
		uuid.NewString(), in.Name, Slugify(in.Name), in.Duration, in.MaxGroupSize, in.Difficulty,
		in.Price, in.PriceDiscount, in.Summary, in.Description, in.SecretTour, startDates(in.StartDates)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, tourNotFound))
	}
	return t, nil
}

func startDates(dates []time.Time) []time.Time {
	if dates == nil {
		return []time.Time{}
	}
	return dates
}

// GetTour возвращает публичный тур по id.
func (s *Storage) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	const op = "storage.GetTour"
	q := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1 AND NOT secret_tour`
	t, err := scanTour(s.DB.QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, tourNotFound))
	}
	return t, nil
}

// UpdateTour применяет частичное обновление; при смене названия пересчитывается slug.
// Секретные туры тоже обновляются, иначе их нельзя было бы снова открыть.
func (s *Storage) UpdateTour(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error) {
	const op = "storage.UpdateTour"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	set := newSetList(id)
	add(set, "name", patch.Name)
	if patch.Name != nil {
		slug := Slugify(*patch.Name)
		add(set, "slug", &slug)
	}
	add(set, "duration", patch.Duration)
	add(set, "max_group_size", patch.MaxGroupSize)
	add(set, "difficulty", patch.Difficulty)
	add(set, "price", patch.Price)
	add(set, "price_discount", patch.PriceDiscount)
	add(set, "summary", patch.Summary)
	add(set, "description", patch.Description)
	add(set, "secret_tour", patch.SecretTour)
	if patch.StartDates != nil {
		dates := startDates(*patch.StartDates)
		add(set, "start_dates", &dates)
	}

	var row pgx.Row
	if set.empty() {
		row = s.DB.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE id = $1`, id)
	} else {
		row = s.DB.QueryRow(ctx, `UPDATE tours SET `+set.sql()+` WHERE id = $1 RETURNING `+tourColumns, set.args...)
	}
	t, err := scanTour(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, tourNotFound))
	}
	return t, nil
}

// DeleteTour удаляет тур и его отзывы.
func (s *Storage) DeleteTour(ctx context.Context, id string) error {
	const op = "storage.DeleteTour"
	return s.execOne(ctx, op, tourNotFound, `DELETE FROM tours WHERE id = $1`, id)
}

// ListTours возвращает страницу публичных туров по параметрам запроса.
func (s *Storage) ListTours(ctx context.Context, values url.Values) ([]query.Document, error) {
	const op = "storage.ListTours"
	docs, err := query.New(s.DB, TourSchema, values, s.Limits).
		Where("secretTour", false).
		Filter().Sort().LimitFields().Paginate().
		Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, tourNotFound))
	}
	return docs, nil
}

// TourStats агрегирует туры с высоким рейтингом по уровню сложности.
func (s *Storage) TourStats(ctx context.Context, minRating float64) ([]models.TourStats, error) {
	const op = "storage.TourStats"
	q := `SELECT upper(difficulty), count(*), COALESCE(sum(ratings_quantity), 0),
			  round(avg(ratings_average)::numeric, 2)::float8, round(avg(price)::numeric, 2)::float8,
			  min(price), max(price)
		  FROM tours
		  WHERE ratings_average >= $1 AND NOT secret_tour
		  GROUP BY difficulty
		  ORDER BY avg(price)`
	rows, err := s.DB.Query(ctx, q, minRating)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, tourNotFound))
	}
	defer rows.Close()

	stats := make([]models.TourStats, 0)
	for rows.Next() {
		var st models.TourStats
		if err := rows.Scan(&st.Difficulty, &st.NumTours, &st.NumRatings, &st.AvgRating,
			&st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// MonthlyPlan считает старты публичных туров по месяцам года year,
// самые загруженные месяцы идут первыми.
func (s *Storage) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error) {
	const op = "storage.MonthlyPlan"
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	q := `SELECT extract(month FROM d)::int AS month, count(*)::int AS num_tour_starts,
			  array_agg(t.name ORDER BY t.name) AS tours
		  FROM tours t, unnest(t.start_dates) AS d
		  WHERE d >= $1 AND d < $2 AND NOT t.secret_tour
		  GROUP BY month
		  ORDER BY num_tour_starts DESC, month
		  LIMIT 12`
	rows, err := s.DB.Query(ctx, q, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, tourNotFound))
	}
	defer rows.Close()

	plan := make([]models.MonthlyPlan, 0, 12)
	for rows.Next() {
		var p models.MonthlyPlan
		if err := rows.Scan(&p.Month, &p.NumTourStarts, &p.Tours); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plan = append(plan, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}
