package tourbooking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tourbooking/internal/cache"
	"github.com/magabrotheeeer/tourbooking/internal/config"
	authhandler "github.com/magabrotheeeer/tourbooking/internal/http/handlers/auth"
	"github.com/magabrotheeeer/tourbooking/internal/http/handlers/health"
	"github.com/magabrotheeeer/tourbooking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tourbooking/internal/lib/jwt"
	"github.com/magabrotheeeer/tourbooking/internal/lib/password"
	"github.com/magabrotheeeer/tourbooking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tourbooking/internal/lib/sl"
	"github.com/magabrotheeeer/tourbooking/internal/migrations"
	"github.com/magabrotheeeer/tourbooking/internal/query"
	authservice "github.com/magabrotheeeer/tourbooking/internal/services/auth"
	"github.com/magabrotheeeer/tourbooking/internal/services/notifier"
	reviewservice "github.com/magabrotheeeer/tourbooking/internal/services/review"
	tourservice "github.com/magabrotheeeer/tourbooking/internal/services/tour"
	userservice "github.com/magabrotheeeer/tourbooking/internal/services/user"
	"github.com/magabrotheeeer/tourbooking/internal/storage/repository"
)

// ShutdownTimeout — время на завершение активных запросов при остановке.
const ShutdownTimeout = 15 * time.Second

// App — собранное приложение с HTTP-сервером и внешними подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключается к хранилищу, применяет миграции, подключает кеш и канал
// уведомлений, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "tourbooking.New"

	limits := query.Limits{DefaultLimit: cfg.Query.DefaultLimit, MaxLimit: cfg.Query.MaxLimit}
	db, pool, err := repository.New(ctx, cfg.StorageConnectionString, cfg.MaxConns, limits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	version, err := migrations.Run(stdlib.OpenDBFromPool(pool), cfg.MigrationsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("schema is up to date", slog.Uint64("version", uint64(version)))

	app := &App{logger: logger, db: db}

	var tourCache tourservice.Cache
	redisCache, err := cache.InitServer(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis is unavailable, tours are served without cache", sl.Err(err))
	} else {
		app.cache = redisCache
		tourCache = redisCache
	}

	var resetNotifier authservice.Notifier = notifier.NewLog(logger)
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.PasswordResetQueues(cfg.RabbitMQ.RoutingKey))
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		resetNotifier = notifier.NewAMQP(ch, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey, logger)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, password.New(cfg.BcryptCost), jwtMaker, resetNotifier, authservice.Options{
		ResetTTL:     cfg.Password.ResetTTL,
		ResetURLBase: cfg.PublicURL + "/api/v1/users/reset-password",
	}, logger)
	tourService := tourservice.NewService(db, tourCache, cfg.TourTTL, logger)
	reviewService := reviewservice.NewService(db, tourService, logger)
	userService := userservice.NewService(db, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:           logger,
		Env:           cfg.Env,
		Authenticator: middlewarectx.NewAuthenticator(authService, cfg.CookieName, logger),
		AuthHandler: authhandler.New(logger, authService, authhandler.CookieConfig{
			Name:   cfg.CookieName,
			TTL:    cfg.CookieTTL,
			Secure: cfg.Env == config.EnvProd,
		}, cfg.IsDevelopment()),
		Tours:          tourService,
		Users:          userService,
		Reviews:        reviewService,
		Health:         health.New(logger, db),
		Limiter:        middlewarectx.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Metrics:        middlewarectx.NewMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		BodyLimit:      cfg.BodyLimitBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и блокируется до ошибки или отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis connection", sl.Err(err))
		}
	}
	a.db.Close()
}
