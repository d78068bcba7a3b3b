package modelcatalog

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/model-catalog/internal/cache"
	"github.com/magabrotheeeer/model-catalog/internal/filterstore"
	catalogList "github.com/magabrotheeeer/model-catalog/internal/http/handlers/catalog/list"
	filtersRead "github.com/magabrotheeeer/model-catalog/internal/http/handlers/filters/read"
	filtersSave "github.com/magabrotheeeer/model-catalog/internal/http/handlers/filters/save"
	"github.com/magabrotheeeer/model-catalog/internal/http/handlers/health"
	"github.com/magabrotheeeer/model-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/model-catalog/internal/metrics"
	"github.com/magabrotheeeer/model-catalog/internal/models"
	catalogservice "github.com/magabrotheeeer/model-catalog/internal/services/catalog"
	"github.com/magabrotheeeer/model-catalog/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, catalogService *catalogservice.Service, selectionStore *filterstore.Store, tokenParser middlewarectx.TokenParser, db *storage.Storage, cacheRedis *cache.Cache) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.HTTPMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Выдача каталога доступна анонимно, токен лишь включает
		// персональные фильтры
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalAuthMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/catalog/models", catalogList.New(logger, catalogService, models.KindAll).ServeHTTP)
			r.Get("/catalog/apps", catalogList.New(logger, catalogService, models.KindApps).ServeHTTP)
			r.Get("/catalog/models-only", catalogList.New(logger, catalogService, models.KindModelsOnly).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/catalog/filters/{section}", filtersRead.New(logger, selectionStore).ServeHTTP)
			r.Put("/catalog/filters/{section}", filtersSave.New(logger, selectionStore).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, map[string]health.Pinger{
		"postgres": db,
		"redis":    cacheRedis,
	}).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
