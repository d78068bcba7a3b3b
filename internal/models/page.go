package models

// Page представляет одну страницу выдачи каталога с курсорной пагинацией.
// NextCursor отсутствует на последней странице, PrevCursor — на первой.
// Курсор — это смещение начала следующей страницы; первая страница — 0.
type Page struct {
	Items      []CatalogItem `json:"items"`
	NextCursor *int          `json:"nextCursor,omitempty"`
	PrevCursor *int          `json:"prevCursor,omitempty"`
}
