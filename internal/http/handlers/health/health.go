// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/model-catalog/internal/http/response"
	"github.com/magabrotheeeer/model-catalog/internal/lib/sl"
)

// Pinger описывает проверку доступности зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает запросы проверки готовности.
type Handler struct {
	log     *slog.Logger
	pingers map[string]Pinger
}

// New создает Handler с именованными проверками зависимостей.
func New(log *slog.Logger, pingers map[string]Pinger) *Handler {
	return &Handler{log: log, pingers: pingers}
}

// ServeHTTP обрабатывает HTTP-запрос проверки готовности.
//
// @Summary      Готовность сервиса
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.ErrorResponse
// @Router       /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.New"

	for name, p := range h.pingers {
		if err := p.Ping(r.Context()); err != nil {
			h.log.Error("dependency is not ready",
				slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("service is not ready"))
			return
		}
	}
	render.JSON(w, r, response.OKWithData("ready"))
}
