// Package tour содержит бизнес-логику работы с турами и кеширование туров в Redis.
package tour

import (
	"context"
	"log/slog"
	"maps"
	"net/url"
	"time"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/lib/sl"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// Repository определяет методы работы с турами в хранилище.
type Repository interface {
	ListTours(ctx context.Context, values url.Values) ([]query.Document, error)
	GetTour(ctx context.Context, id string) (*models.Tour, error)
	CreateTour(ctx context.Context, in models.TourInput) (*models.Tour, error)
	UpdateTour(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error)
	DeleteTour(ctx context.Context, id string) error
	TourStats(ctx context.Context, minRating float64) ([]models.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error)
}

// MsgInvalidYear ответ на год вне допустимого диапазона.
const MsgInvalidYear = "year must be between 1970 and 9999"

// Cache описывает методы для кеширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// StatsMinRating — нижняя граница рейтинга для статистики туров.
const StatsMinRating = 4.5

const statsKey = "tours:stats"

// Service реализует операции с турами. Ошибки кеша не прерывают запрос.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создаёт Service. cache может быть nil.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}
}

func tourKey(id string) string {
	return "tour:" + id
}

// List возвращает страницу туров по параметрам запроса.
func (s *Service) List(ctx context.Context, values url.Values) ([]query.Document, error) {
	return s.repo.ListTours(ctx, values)
}

// TopCheapValues подставляет параметры выборки пяти лучших недорогих туров
// поверх параметров запроса.
func TopCheapValues(values url.Values) url.Values {
	out := maps.Clone(values)
	if out == nil {
		out = url.Values{}
	}
	out.Set(query.ParamLimit, "5")
	out.Set(query.ParamSort, "-ratingsAverage,price")
	out.Set(query.ParamFields, "name,price,ratingsAverage,summary,difficulty")
	out.Del(query.ParamPage)
	return out
}

// TopCheap возвращает пять туров с лучшим рейтингом и наименьшей ценой.
func (s *Service) TopCheap(ctx context.Context, values url.Values) ([]query.Document, error) {
	return s.repo.ListTours(ctx, TopCheapValues(values))
}

// Get возвращает тур, сначала пытаясь прочитать его из кеша.
func (s *Service) Get(ctx context.Context, id string) (*models.Tour, error) {
	const op = "tour.Get"
	key := tourKey(id)
	if s.cache != nil {
		var cached models.Tour
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("failed to read from cache", slog.String("op", op), slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	tour, err := s.repo.GetTour(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, op, tour)
	return tour, nil
}

// Create создаёт тур и сбрасывает кеш статистики.
func (s *Service) Create(ctx context.Context, in models.TourInput) (*models.Tour, error) {
	const op = "tour.Create"
	tour, err := s.repo.CreateTour(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new tour", slog.String("op", op), slog.String("id", tour.ID))
	s.Invalidate(ctx, "")
	return tour, nil
}

// Update применяет частичное обновление и обновляет кеш.
// Секретный тур в кеш не попадает: публичное чтение его не видит.
func (s *Service) Update(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error) {
	const op = "tour.Update"
	tour, err := s.repo.UpdateTour(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, id)
	if !tour.SecretTour {
		s.store(ctx, op, tour)
	}
	return tour, nil
}

// Delete удаляет тур и инвалидирует кеш.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteTour(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx, id)
	return nil
}

// Stats возвращает агрегаты по уровням сложности для туров с высоким рейтингом.
func (s *Service) Stats(ctx context.Context) ([]models.TourStats, error) {
	const op = "tour.Stats"
	if s.cache != nil {
		var cached []models.TourStats
		found, err := s.cache.Get(ctx, statsKey, &cached)
		if err != nil {
			s.log.Warn("failed to read from cache", slog.String("op", op), slog.String("key", statsKey), sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	stats, err := s.repo.TourStats(ctx, StatsMinRating)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, statsKey, stats, s.ttl); err != nil {
			s.log.Warn("failed to add to cache", slog.String("op", op), slog.String("key", statsKey), sl.Err(err))
		}
	}
	return stats, nil
}

// MonthlyPlan возвращает число стартов туров по месяцам года year.
// План не кешируется: он нужен только сотрудникам.
func (s *Service) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error) {
	if year < 1970 || year > 9999 {
		return nil, apperr.Validation(MsgInvalidYear, map[string]string{"year": MsgInvalidYear})
	}
	return s.repo.MonthlyPlan(ctx, year)
}

// Invalidate удаляет из кеша тур id (если задан) и статистику.
// Вызывается и при изменении отзывов, так как они меняют рейтинг тура.
func (s *Service) Invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	keys := []string{statsKey}
	if id != "" {
		keys = append(keys, tourKey(id))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("op", "tour.Invalidate"), sl.Err(err))
	}
}

func (s *Service) store(ctx context.Context, op string, tour *models.Tour) {
	if s.cache == nil {
		return
	}
	key := tourKey(tour.ID)
	if err := s.cache.Set(ctx, key, tour, s.ttl); err != nil {
		s.log.Warn("failed to add to cache", slog.String("op", op), slog.String("key", key), sl.Err(err))
	}
}
