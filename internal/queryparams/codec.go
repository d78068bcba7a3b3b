// Package queryparams реализует двусторонний кодек параметров строки запроса
// страницы каталога: декодирование url.Values в типизированный набор фильтров
// и слияние частичных обновлений обратно в строку запроса. Кодек не зависит
// от конкретного роутера: HTTP-обработчики выступают тонкими адаптерами.
//
// Декодирование — «всё или ничего»: если хотя бы одно поле не проходит
// валидацию, весь результат заменяется представлением по умолчанию
// (view = categories), частичного восстановления полей нет.
package queryparams

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/gosimple/slug"

	"github.com/magabrotheeeer/model-catalog/internal/lib/strmap"
	"github.com/magabrotheeeer/model-catalog/internal/models"
)

// Ключи строки запроса, распознаваемые кодеком. Остальные ключи
// игнорируются при чтении и не затрагиваются при записи.
const (
	KeyPeriod     = "period"
	KeyPeriodMode = "periodMode"
	KeySort       = "sort"
	KeyQuery      = "query"
	KeyUserID     = "userId"
	KeyUsername   = "username"
	KeyTagName    = "tagname"
	KeyTagID      = "tag"
	KeyFavorites  = "favorites"
	KeyHidden     = "hidden"
	KeyView       = "view"
)

var recognizedKeys = map[string]struct{}{
	KeyPeriod:     {},
	KeyPeriodMode: {},
	KeySort:       {},
	KeyQuery:      {},
	KeyUserID:     {},
	KeyUsername:   {},
	KeyTagName:    {},
	KeyTagID:      {},
	KeyFavorites:  {},
	KeyHidden:     {},
	KeyView:       {},
}

// Query представляет типизированный результат декодирования строки запроса.
// Пустые строки, нулевые числа и nil-указатели означают отсутствие поля.
type Query struct {
	Period     models.Period
	PeriodMode models.PeriodMode
	Sort       string
	Query      string
	UserID     int
	Username   string
	TagName    string
	TagID      int
	Favorites  *bool
	Hidden     *bool
	View       models.ViewMode
}

// rawQuery используется для валидации сырых строковых значений
// до их преобразования в Query.
type rawQuery struct {
	Period     string `validate:"omitempty,oneof=AllTime Year Month Week Day"`
	PeriodMode string `validate:"omitempty,oneof=published stats"`
	UserID     string `validate:"omitempty,numeric"`
	TagID      string `validate:"omitempty,numeric"`
	View       string `validate:"omitempty,oneof=categories feed"`
}

// Codec декодирует и кодирует параметры строки запроса каталога.
// Набор допустимых сортировок задаётся при создании: у списка моделей
// и списка приложений он разный, схема в остальном общая.
type Codec struct {
	validate *validator.Validate
	sorts    map[string]struct{}
}

// NewModelCodec создает кодек для страницы моделей.
func NewModelCodec() *Codec {
	return newCodec(models.ModelSorts)
}

// NewAppCodec создает кодек для страницы приложений.
func NewAppCodec() *Codec {
	return newCodec(models.AppSorts)
}

func newCodec(sorts []string) *Codec {
	allowed := make(map[string]struct{}, len(sorts))
	for _, s := range sorts {
		allowed[s] = struct{}{}
	}
	return &Codec{
		validate: validator.New(),
		sorts:    allowed,
	}
}

// Default возвращает результат декодирования по умолчанию:
// единственное поле view = categories.
func Default() Query {
	return Query{View: models.ViewCategories}
}

// Decode разбирает строку запроса в типизированный Query.
//
// Отсутствующие поля остаются пустыми. Имя пользователя нормализуется
// в url-безопасную форму (слаг). Булевы поля принимают "true"/"false":
// "true" даёт true, любое другое значение — false. При ошибке валидации
// любого поля возвращается Default() целиком.
func (c *Codec) Decode(values url.Values) Query {
	raw := rawQuery{
		Period:     values.Get(KeyPeriod),
		PeriodMode: values.Get(KeyPeriodMode),
		UserID:     values.Get(KeyUserID),
		TagID:      values.Get(KeyTagID),
		View:       values.Get(KeyView),
	}
	if err := c.validate.Struct(raw); err != nil {
		return Default()
	}

	sort := values.Get(KeySort)
	if sort != "" {
		if _, ok := c.sorts[sort]; !ok {
			return Default()
		}
	}

	q := Query{
		Period:     models.Period(raw.Period),
		PeriodMode: models.PeriodMode(raw.PeriodMode),
		Sort:       sort,
		Query:      values.Get(KeyQuery),
		TagName:    values.Get(KeyTagName),
		View:       models.ViewMode(raw.View),
	}
	if username := values.Get(KeyUsername); username != "" {
		q.Username = slug.Make(username)
	}
	// Тег numeric пропускает дробные и сверхдлинные числа: окончательную
	// проверку делает Atoi, его ошибка тоже ведёт к фолбэку.
	if raw.UserID != "" {
		id, err := strconv.Atoi(raw.UserID)
		if err != nil {
			return Default()
		}
		q.UserID = id
	}
	if raw.TagID != "" {
		id, err := strconv.Atoi(raw.TagID)
		if err != nil {
			return Default()
		}
		q.TagID = id
	}
	if _, ok := values[KeyFavorites]; ok {
		q.Favorites = boolPtr(values.Get(KeyFavorites) == "true")
	}
	if _, ok := values[KeyHidden]; ok {
		q.Hidden = boolPtr(values.Get(KeyHidden) == "true")
	}
	return q
}

// Encode накладывает частичное обновление update на текущее состояние строки
// запроса current и возвращает новое состояние. Из update учитываются только
// распознаваемые ключи; пустые значения удаляют поле. После слияния все
// пустые поля убираются из результата. Операция идемпотентна: повторное
// применение того же update не меняет результат.
func (c *Codec) Encode(current url.Values, update map[string]string) url.Values {
	merged := url.Values{}
	for key, vals := range current {
		for _, v := range vals {
			merged.Add(key, v)
		}
	}
	for key, value := range update {
		if _, ok := recognizedKeys[key]; !ok {
			continue
		}
		merged.Set(key, value)
	}
	for key := range merged {
		if merged.Get(key) == "" {
			merged.Del(key)
		}
	}
	return merged
}

// Merge накладывает присутствующие поля override поверх base и возвращает
// результат. Используется для объединения сохранённой пользователем выборки
// с параметрами из URL: URL имеет приоритет.
func Merge(base, override Query) Query {
	out := base
	if override.Period != "" {
		out.Period = override.Period
	}
	if override.PeriodMode != "" {
		out.PeriodMode = override.PeriodMode
	}
	if override.Sort != "" {
		out.Sort = override.Sort
	}
	if override.Query != "" {
		out.Query = override.Query
	}
	if override.UserID != 0 {
		out.UserID = override.UserID
	}
	if override.Username != "" {
		out.Username = override.Username
	}
	if override.TagName != "" {
		out.TagName = override.TagName
	}
	if override.TagID != 0 {
		out.TagID = override.TagID
	}
	if override.Favorites != nil {
		out.Favorites = override.Favorites
	}
	if override.Hidden != nil {
		out.Hidden = override.Hidden
	}
	if override.View != "" {
		out.View = override.View
	}
	return out
}

// ValuesFromSelection преобразует сохранённую выборку фильтров в url.Values,
// чтобы её можно было прогнать через Decode по общей схеме.
func ValuesFromSelection(selection map[string]string) url.Values {
	values := url.Values{}
	for key, value := range strmap.RemoveEmpty(selection) {
		if _, ok := recognizedKeys[key]; ok {
			values.Set(key, value)
		}
	}
	return values
}

// Filter преобразует Query в доменный фильтр слоя хранения.
func (q Query) Filter() models.Filter {
	return models.Filter{
		Period:     q.Period,
		PeriodMode: q.PeriodMode,
		Sort:       q.Sort,
		Query:      q.Query,
		UserID:     q.UserID,
		Username:   q.Username,
		TagName:    q.TagName,
		TagID:      q.TagID,
		Favorites:  q.Favorites,
		Hidden:     q.Hidden,
		View:       q.View,
	}
}

func boolPtr(v bool) *bool {
	return &v
}
