// Package modelcatalog собирает зависимости сервиса каталога и управляет
// жизненным циклом HTTP-сервера.
package modelcatalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/model-catalog/internal/cache"
	"github.com/magabrotheeeer/model-catalog/internal/config"
	"github.com/magabrotheeeer/model-catalog/internal/filterstore"
	jwtlib "github.com/magabrotheeeer/model-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/model-catalog/internal/metrics"
	"github.com/magabrotheeeer/model-catalog/internal/migrations"
	catalogservice "github.com/magabrotheeeer/model-catalog/internal/services/catalog"
	"github.com/magabrotheeeer/model-catalog/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
}

// New инициализирует хранилища, сервисы и маршруты приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	selectionStore := filterstore.New(cacheRedis)
	catalogService := catalogservice.New(db, selectionStore, cacheRedis, logger, cfg.Catalog)
	tokenMaker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, catalogService, selectionStore, tokenMaker, db, cacheRedis)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до остановки по контексту
// или до фатальной ошибки сервера.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		_ = a.cache.Db.Close()
		return err
	}
}
