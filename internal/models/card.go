package models

import "time"

// Разновидности выборки каталога. Значение определяет, какие карточки
// попадают в список: все, только приложения или только модели.
type ListKind string

const (
	// KindAll — общий список: модели вместе с приложениями.
	KindAll ListKind = "all"
	// KindApps — только приложения.
	KindApps ListKind = "apps"
	// KindModelsOnly — только модели, без приложений.
	KindModelsOnly ListKind = "models-only"
)

// Типы карточек каталога в хранилище.
const (
	ItemTypeModel = "model"
	ItemTypeApp   = "app"
)

// CatalogItem представляет карточку каталога: модель или приложение.
type CatalogItem struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	ItemType       string    `json:"itemType"`
	Username       string    `json:"username"`
	UserID         int       `json:"userId"`
	Rating         float64   `json:"rating"`
	DownloadCount  int       `json:"downloadCount"`
	LikeCount      int       `json:"likeCount"`
	CommentCount   int       `json:"commentCount"`
	UsedCount      int       `json:"usedCount"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}
