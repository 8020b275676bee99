// Package tourbooking собирает HTTP-приложение: зависимости, маршруты и сервер.
package tourbooking

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/tourbooking/internal/http/handlers/auth"
	"github.com/magabrotheeeer/tourbooking/internal/http/handlers/factory"
	"github.com/magabrotheeeer/tourbooking/internal/http/handlers/review"
	"github.com/magabrotheeeer/tourbooking/internal/http/handlers/tour"
	"github.com/magabrotheeeer/tourbooking/internal/http/handlers/user"
	"github.com/magabrotheeeer/tourbooking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	reviewservice "github.com/magabrotheeeer/tourbooking/internal/services/review"
	tourservice "github.com/magabrotheeeer/tourbooking/internal/services/tour"
	userservice "github.com/magabrotheeeer/tourbooking/internal/services/user"
)

var (
	admins        = models.NewRoleSet(models.RoleAdmin)
	tourEditors   = models.NewRoleSet(models.RoleAdmin, models.RoleLeadGuide)
	tourStaff     = models.NewRoleSet(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide)
	reviewers     = models.NewRoleSet(models.RoleUser)
	reviewEditors = models.NewRoleSet(models.RoleUser, models.RoleAdmin)
)

// Deps — всё, что нужно для регистрации маршрутов.
type Deps struct {
	Log            *slog.Logger
	Env            string
	Authenticator  *middlewarectx.Authenticator
	AuthHandler    *auth.Handler
	Tours          *tourservice.Service
	Users          *userservice.Service
	Reviews        *reviewservice.Service
	Health         http.Handler
	Limiter        *middlewarectx.RateLimiter
	Metrics        *middlewarectx.Metrics
	MetricsHandler http.Handler
	BodyLimit      int64
	AllowedOrigins []string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	log := d.Log
	h := func(fn response.HandlerFunc) http.HandlerFunc {
		return response.Handle(log, d.Env, fn)
	}
	protect := d.Authenticator.Protect
	restrict := middlewarectx.RestrictTo
	anyone := middlewarectx.WithoutIdentity

	tourH := tour.New(log, d.Tours)
	reviewH := review.New(log, d.Reviews)
	userH := user.New(log, d.Users)
	authH := d.AuthHandler

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.SecureHeaders,
		middlewarectx.CORS(d.AllowedOrigins),
		d.Metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middlewarectx.BodyLimit(d.BodyLimit),
			d.Limiter.Middleware(log),
		)

		r.Route("/tours", func(r chi.Router) {
			r.Get("/", h(factory.GetAll(log, "tours", d.Tours.List)))
			r.Get("/top-5-cheap", h(tourH.TopCheap))
			r.Get("/tour-stats", h(tourH.Stats))
			r.Get("/monthly-plan/{year}", h(protect(restrict(tourStaff, anyone(tourH.MonthlyPlan)))))
			r.Get("/{id}", h(factory.GetOne("tour", d.Tours.Get)))
			r.Post("/", h(protect(restrict(tourEditors, anyone(factory.CreateOne(log, "tour", d.Tours.Create))))))
			r.Patch("/{id}", h(protect(restrict(tourEditors, anyone(factory.UpdateOne(log, "tour", d.Tours.Update))))))
			r.Delete("/{id}", h(protect(restrict(tourEditors, anyone(factory.DeleteOne(log, "tour", d.Tours.Delete))))))

			r.Get("/{tourId}/reviews", h(protect(anyone(reviewH.List))))
			r.Post("/{tourId}/reviews", h(protect(restrict(reviewers, reviewH.Create))))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h(protect(anyone(reviewH.List))))
			r.Post("/", h(protect(restrict(reviewers, reviewH.Create))))
			r.Get("/{id}", h(protect(anyone(factory.GetOne("review", d.Reviews.Get)))))
			r.Patch("/{id}", h(protect(restrict(reviewEditors, reviewH.Update))))
			r.Delete("/{id}", h(protect(restrict(reviewEditors, reviewH.Delete))))
		})

		r.Route("/users", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/signup", h(authH.Signup))
			r.Post("/login", h(authH.Login))
			r.Get("/logout", h(authH.Logout))
			r.Post("/forgot-password", h(authH.ForgotPassword))
			r.Patch("/reset-password/{token}", h(authH.ResetPassword))
			r.Get("/session", h(d.Authenticator.IsLoggedIn(userH.Session)))

			// Текущий пользователь
			r.Patch("/update-password", h(protect(authH.UpdatePassword)))
			r.Get("/me", h(protect(userH.Me)))
			r.Patch("/update-me", h(protect(userH.UpdateMe)))
			r.Delete("/delete-me", h(protect(userH.DeleteMe)))

			// Администрирование
			r.Get("/", h(protect(restrict(admins, anyone(factory.GetAll(log, "users", d.Users.List))))))
			r.Get("/{id}", h(protect(restrict(admins, anyone(factory.GetOne("user", d.Users.Get))))))
			r.Patch("/{id}", h(protect(restrict(admins, anyone(factory.UpdateOne(log, "user", d.Users.Update))))))
			r.Delete("/{id}", h(protect(restrict(admins, anyone(factory.DeleteOne(log, "user", d.Users.Delete))))))
		})
	})

	r.Handle("/metrics", d.MetricsHandler)
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.Method(http.MethodGet, "/health", d.Health)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, http.StatusNotFound, "Can't find "+r.URL.Path+" on this server!")
	})
}
