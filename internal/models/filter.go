// Package models содержит доменные структуры каталога: карточки моделей и
// приложений, фильтры выборки и страницы с курсорной пагинацией.
package models

// ViewMode определяет режим отображения списка на странице каталога.
type ViewMode string

const (
	// ViewCategories — отображение по категориям (значение по умолчанию).
	ViewCategories ViewMode = "categories"
	// ViewFeed — отображение единой лентой.
	ViewFeed ViewMode = "feed"
)

// Period задаёт временное окно фильтрации.
type Period string

// Допустимые значения периода.
const (
	PeriodAllTime Period = "AllTime"
	PeriodYear    Period = "Year"
	PeriodMonth   Period = "Month"
	PeriodWeek    Period = "Week"
	PeriodDay     Period = "Day"
)

// PeriodMode определяет, к какой дате применяется период:
// к дате публикации или к дате последней активности.
type PeriodMode string

const (
	// PeriodModePublished — окно по дате публикации.
	PeriodModePublished PeriodMode = "published"
	// PeriodModeStats — окно по дате последней активности.
	PeriodModeStats PeriodMode = "stats"
)

// ModelSorts перечисляет допустимые сортировки для списка моделей.
var ModelSorts = []string{
	"Highest Rated",
	"Most Downloaded",
	"Most Liked",
	"Most Discussed",
	"Newest",
	"Oldest",
}

// AppSorts перечисляет допустимые сортировки для списка приложений.
var AppSorts = []string{
	"Most Used",
	"Newest",
	"Oldest",
}

// Filter представляет объединённый набор фильтров, передаваемый в слой
// доступа к данным. Строковые поля с пустым значением и nil-указатели
// означают отсутствие фильтра.
type Filter struct {
	Period     Period     // Временное окно выборки
	PeriodMode PeriodMode // Интерпретация периода
	Sort       string     // Сортировка (одно из ModelSorts или AppSorts)
	Query      string     // Свободный текстовый поиск по названию
	UserID     int        // Идентификатор автора (0 — без фильтра)
	Username   string     // Нормализованное имя автора
	TagName    string     // Название тега
	TagID      int        // Идентификатор тега (0 — без фильтра)
	Favorites  *bool      // Только избранное текущего пользователя
	Hidden     *bool      // Включать ли скрытые текущим пользователем
	View       ViewMode   // Режим отображения (на выборку не влияет)

	// RequestedBy — имя аутентифицированного пользователя, относительно
	// которого вычисляются избранное и скрытые карточки.
	RequestedBy string
}
