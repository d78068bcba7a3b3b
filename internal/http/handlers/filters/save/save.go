// Package save реализует HTTP-обработчик сохранения выборки фильтров
// пользователя для раздела каталога. Выборка заменяется целиком: пустые
// значения вычищаются на стороне хранилища.
package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/model-catalog/internal/filterstore"
	"github.com/magabrotheeeer/model-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/model-catalog/internal/http/response"
	"github.com/magabrotheeeer/model-catalog/internal/lib/sl"
)

// Handler обрабатывает запросы на сохранение выборки фильтров.
type Handler struct {
	log   *slog.Logger
	store Store
}

// Store описывает интерфейс хранилища выборок.
type Store interface {
	Save(ctx context.Context, section filterstore.Section, username string, selection map[string]string) error
}

// New создает новый Handler с переданным логгером и хранилищем.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{log: log, store: store}
}

// ServeHTTP обрабатывает HTTP-запрос на сохранение выборки фильтров.
//
// @Summary      Сохранение выборки фильтров
// @Description  Заменяет выборку фильтров текущего пользователя для раздела каталога.
// @Tags         filters
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        section  path  string             true  "Раздел каталога"  Enums(models, apps)
// @Param        input    body  map[string]string  true  "Выборка фильтров"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.ErrorResponse
// @Failure      401  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /catalog/filters/{section} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.filters.save.New"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var selection map[string]string
	if err := render.DecodeJSON(r.Body, &selection); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	section := filterstore.Section(chi.URLParam(r, "section"))
	if err := h.store.Save(r.Context(), section, username, selection); err != nil {
		if errors.Is(err, filterstore.ErrUnknownSection) {
			log.Error("unknown filter section", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown filter section"))
			return
		}
		log.Error("failed to save filter selection", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save filter selection"))
		return
	}

	log.Info("filter selection saved", "section", section, "count", len(selection))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"section": section,
	}))
}
