// Package catalog содержит бизнес-логику выдачи каталога: объединение
// сохранённой пользователем выборки фильтров с параметрами из URL,
// курсорную пагинацию и кеширование первых страниц.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/model-catalog/internal/config"
	"github.com/magabrotheeeer/model-catalog/internal/filterstore"
	"github.com/magabrotheeeer/model-catalog/internal/metrics"
	"github.com/magabrotheeeer/model-catalog/internal/models"
	"github.com/magabrotheeeer/model-catalog/internal/queryparams"
)

// CatalogRepository определяет методы выборки карточек из хранилища.
type CatalogRepository interface {
	// ListItems возвращает страницу карточек по фильтру с пагинацией.
	ListItems(ctx context.Context, kind models.ListKind, f models.Filter, cursor, limit int) ([]models.CatalogItem, error)
}

// SelectionStore описывает чтение сохранённых выборок фильтров.
type SelectionStore interface {
	Read(ctx context.Context, section filterstore.Section, username string) (map[string]string, error)
}

// Cache описывает методы для кеширования страниц выдачи.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service реализует бизнес-логику каталога.
type Service struct {
	repo  CatalogRepository
	store SelectionStore
	cache Cache
	log   *slog.Logger
	cfg   config.Catalog

	modelCodec *queryparams.Codec
	appCodec   *queryparams.Codec
}

// New создает новый экземпляр Service.
func New(repo CatalogRepository, store SelectionStore, cache Cache, log *slog.Logger, cfg config.Catalog) *Service {
	return &Service{
		repo:       repo,
		store:      store,
		cache:      cache,
		log:        log,
		cfg:        cfg,
		modelCodec: queryparams.NewModelCodec(),
		appCodec:   queryparams.NewAppCodec(),
	}
}

// List возвращает страницу каталога разновидности kind.
//
// Сохранённая выборка пользователя username подкладывается под параметры q
// из URL: поля URL имеют приоритет. Для анонимных запросов фильтры
// избранного и скрытого сбрасываются. Первая страница анонимной выдачи
// кешируется на короткий срок.
func (s *Service) List(ctx context.Context, kind models.ListKind, username string, q queryparams.Query, cursor, limit int) (*models.Page, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if cursor < 0 {
		cursor = 0
	}
	metrics.IncListRequest(string(kind))

	merged := q
	if username != "" {
		selection, err := s.store.Read(ctx, section(kind), username)
		if err != nil {
			// Недоступность выборки не валит выдачу: работаем только с URL.
			s.log.Warn("failed to read filter selection", slog.String("username", username), slog.Any("err", err))
		} else {
			stored := s.codec(kind).Decode(queryparams.ValuesFromSelection(selection))
			merged = queryparams.Merge(stored, q)
		}
	}

	filter := merged.Filter()
	filter.RequestedBy = username
	if username == "" {
		filter.Favorites = nil
		filter.Hidden = nil
	}

	cacheKey := ""
	if cursor == 0 && username == "" {
		cacheKey = s.pageKey(kind, filter, limit)
		var cached models.Page
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read page cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
		if found {
			metrics.CacheHits.Inc()
			return &cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	items, err := s.repo.ListItems(ctx, kind, filter, cursor, limit)
	if err != nil {
		return nil, err
	}

	page := &models.Page{Items: items}
	if len(items) == limit {
		next := cursor + limit
		page.NextCursor = &next
	}
	if cursor > 0 {
		prev := cursor - limit
		if prev < 0 {
			prev = 0
		}
		page.PrevCursor = &prev
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, page, s.cfg.CacheTTL); err != nil {
			s.log.Warn("failed to cache page", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return page, nil
}

// codec возвращает кодек с набором сортировок, соответствующим разновидности.
func (s *Service) codec(kind models.ListKind) *queryparams.Codec {
	if kind == models.KindApps {
		return s.appCodec
	}
	return s.modelCodec
}

// section возвращает раздел сохранённых выборок для разновидности списка.
func section(kind models.ListKind) filterstore.Section {
	if kind == models.KindApps {
		return filterstore.SectionApps
	}
	return filterstore.SectionModels
}

// pageKey строит ключ кеша первой страницы по отпечатку фильтра.
func (s *Service) pageKey(kind models.ListKind, f models.Filter, limit int) string {
	h := fnv.New64a()
	raw, _ := json.Marshal(f)
	_, _ = h.Write(raw)
	return fmt.Sprintf("catalog:page:%s:%d:%x", kind, limit, h.Sum64())
}
