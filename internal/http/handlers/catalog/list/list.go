// Package list реализует HTTP-обработчик выдачи каталога.
//
// Один и тот же обработчик обслуживает три разновидности списка: общий,
// только приложения и только модели. Разновидность задаётся при создании,
// вместе с ней выбирается набор допустимых сортировок.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/model-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/model-catalog/internal/http/response"
	"github.com/magabrotheeeer/model-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/model-catalog/internal/models"
	"github.com/magabrotheeeer/model-catalog/internal/queryparams"
)

// Handler обрабатывает запросы на получение страницы каталога.
type Handler struct {
	log     *slog.Logger
	service Service
	kind    models.ListKind
	codec   *queryparams.Codec
}

// Service описывает интерфейс бизнес-логики выдачи каталога.
type Service interface {
	List(ctx context.Context, kind models.ListKind, username string, q queryparams.Query, cursor, limit int) (*models.Page, error)
}

// New создает Handler для разновидности списка kind.
func New(log *slog.Logger, service Service, kind models.ListKind) *Handler {
	codec := queryparams.NewModelCodec()
	if kind == models.KindApps {
		codec = queryparams.NewAppCodec()
	}
	return &Handler{
		log:     log,
		service: service,
		kind:    kind,
		codec:   codec,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на получение страницы каталога.
//
// @Summary      Страница каталога
// @Description  Возвращает страницу карточек с курсорной пагинацией. Невалидные параметры фильтра сбрасывают весь набор к значениям по умолчанию.
// @Tags         catalog
// @Produce      json
// @Param        period     query  string  false  "Период активности"  Enums(AllTime, Year, Month, Week, Day)
// @Param        periodMode query  string  false  "Режим периода"       Enums(published, stats)
// @Param        sort       query  string  false  "Сортировка"
// @Param        query      query  string  false  "Поиск по названию"
// @Param        userId     query  int     false  "ID автора"
// @Param        username   query  string  false  "Имя автора"
// @Param        tag        query  int     false  "ID тега"
// @Param        tagname    query  string  false  "Имя тега"
// @Param        favorites  query  bool    false  "Только избранное"
// @Param        hidden     query  bool    false  "Показывать скрытое"
// @Param        view       query  string  false  "Режим отображения"   Enums(categories, feed)
// @Param        cursor     query  int     false  "Курсор страницы"
// @Param        limit      query  int     false  "Размер страницы"
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.ErrorResponse
// @Router       /catalog/models [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.list.New"

	log := h.log.With(
		slog.String("op", op),
		sl.Kind(string(h.kind)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	values := r.URL.Query()
	q := h.codec.Decode(values)

	cursor, err := strconv.Atoi(values.Get("cursor"))
	if err != nil || cursor < 0 {
		cursor = 0
	}
	limit, err := strconv.Atoi(values.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 0
	}

	// Токен не обязателен: без него выдача обезличена.
	username, _ := r.Context().Value(middlewarectx.User).(string)

	page, err := h.service.List(r.Context(), h.kind, username, q, cursor, limit)
	if err != nil {
		log.Error("failed to list catalog items", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list catalog items"))
		return
	}

	log.Info("catalog page served", "count", len(page.Items))
	render.JSON(w, r, response.OKWithData(page))
}
