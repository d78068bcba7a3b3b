// Package metrics содержит Prometheus-метрики сервиса каталога.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "Длительность обработки HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "Количество HTTP запросов",
	}, []string{"method", "route", "status"})

	ListRequestsByKind = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_list_requests_total",
		Help: "Количество запросов выдачи каталога по типу списка",
	}, []string{"kind"})

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Попадания в кеш первой страницы каталога",
	})

	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Промахи кеша первой страницы каталога",
	})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		ListRequestsByKind,
		CacheHits,
		CacheMisses,
	)
}

// HTTPMiddleware записывает длительность и статус каждого HTTP запроса.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Шаблон маршрута вместо конкретного пути, чтобы не плодить метки.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := strconv.Itoa(ww.Status())
		HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

// IncListRequest увеличивает счётчик запросов выдачи для типа списка.
func IncListRequest(kind string) {
	ListRequestsByKind.WithLabelValues(kind).Inc()
}
