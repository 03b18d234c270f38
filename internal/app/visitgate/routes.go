// Package visitgate предоставляет маршруты для основного приложения.
package visitgate

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/visitgate/visitgate/internal/http/handlers/auth/login"
	"github.com/visitgate/visitgate/internal/http/handlers/auth/register"
	"github.com/visitgate/visitgate/internal/http/handlers/balance/check"
	"github.com/visitgate/visitgate/internal/http/handlers/balance/topup"
	"github.com/visitgate/visitgate/internal/http/handlers/fee/feeread"
	"github.com/visitgate/visitgate/internal/http/handlers/health"
	"github.com/visitgate/visitgate/internal/http/handlers/payment/paymentlist"
	"github.com/visitgate/visitgate/internal/http/handlers/payment/verify"
	"github.com/visitgate/visitgate/internal/http/handlers/qr/generate"
	"github.com/visitgate/visitgate/internal/http/handlers/qr/scan"
	"github.com/visitgate/visitgate/internal/http/handlers/visit/visitcreate"
	"github.com/visitgate/visitgate/internal/http/handlers/visit/visitlist"
	"github.com/visitgate/visitgate/internal/http/handlers/visitor/visitorcreate"
	"github.com/visitgate/visitgate/internal/http/handlers/visitor/visitorlist"
	"github.com/visitgate/visitgate/internal/http/handlers/visitor/visitorread"
	"github.com/visitgate/visitgate/internal/http/middlewarectx"
	"github.com/visitgate/visitgate/internal/models"
	authservice "github.com/visitgate/visitgate/internal/services/auth"
	paymentservice "github.com/visitgate/visitgate/internal/services/payment"
	qrservice "github.com/visitgate/visitgate/internal/services/qr"
	visitorservice "github.com/visitgate/visitgate/internal/services/visitor"
	"github.com/visitgate/visitgate/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	qrService *qrservice.Service,
	paymentService *paymentservice.Service,
	visitorService *visitorservice.Service,
	db *repository.Storage,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/generate-qr", generate.New(logger, qrService).ServeHTTP)
			r.Get("/check-balance/{userId}", check.New(logger, paymentService).ServeHTTP)
			r.Post("/top-up/{userId}", topup.New(logger, paymentService).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, paymentService).ServeHTTP)

			r.Post("/visitors", visitorcreate.New(logger, visitorService).ServeHTTP)
			r.Get("/visitors/list", visitorlist.New(logger, visitorService).ServeHTTP)
			r.Get("/visitors/{id}", visitorread.New(logger, visitorService).ServeHTTP)
			r.Post("/visits", visitcreate.New(logger, visitorService).ServeHTTP)
			r.Get("/visits/list/{visitorId}", visitlist.New(logger, visitorService).ServeHTTP)

			r.Get("/fees/{code}", feeread.New(logger, db).ServeHTTP)

			// Сканирование доступно только персоналу на проходной
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleStaff, models.RoleAdmin))
				r.Get("/scan-qr/{qrData}", scan.New(logger, qrService).ServeHTTP)
			})

			// Решения по платежам принимает только администратор
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
				r.Put("/update-verification/{id}", verify.New(logger, paymentService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", health.New(logger).ServeHTTP)
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
