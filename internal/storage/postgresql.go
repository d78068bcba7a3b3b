// Package storage реализует хранилище каталога на основе PostgreSQL.
// Предоставляет выборку карточек моделей и приложений с фильтрами,
// сортировкой и курсорной пагинацией по смещению.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/model-catalog/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет доступность соединения с базой данных.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'catalog_items'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table catalog_items missing or query error: %w", err)
	}
	return nil
}

// sortOrders отображает пользовательские названия сортировок в ORDER BY.
// Вторичный ключ по id делает порядок страниц устойчивым.
var sortOrders = map[string]string{
	"Highest Rated":   "i.rating DESC",
	"Most Downloaded": "i.download_count DESC",
	"Most Liked":      "i.like_count DESC",
	"Most Discussed":  "i.comment_count DESC",
	"Most Used":       "i.used_count DESC",
	"Newest":          "i.created_at DESC",
	"Oldest":          "i.created_at ASC",
}

// periodDays отображает период фильтрации в длину окна в днях.
var periodDays = map[models.Period]int{
	models.PeriodDay:   1,
	models.PeriodWeek:  7,
	models.PeriodMonth: 30,
	models.PeriodYear:  365,
}

// ListItems возвращает страницу карточек каталога по фильтру f.
// Разновидность kind определяет состав выборки: все карточки, только
// приложения или только модели. Курсор — смещение от начала выдачи.
func (s *Storage) ListItems(ctx context.Context, kind models.ListKind, f models.Filter, cursor, limit int) ([]models.CatalogItem, error) {
	const op = "storage.ListItems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch kind {
	case models.KindApps:
		conds = append(conds, "i.item_type = "+arg(models.ItemTypeApp))
	case models.KindModelsOnly:
		conds = append(conds, "i.item_type = "+arg(models.ItemTypeModel))
	}

	if days, ok := periodDays[f.Period]; ok {
		column := "i.created_at"
		if f.PeriodMode == models.PeriodModeStats {
			column = "i.last_activity_at"
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		conds = append(conds, column+" >= "+arg(cutoff))
	}
	if f.Query != "" {
		conds = append(conds, "i.name ILIKE "+arg("%"+f.Query+"%"))
	}
	if f.UserID != 0 {
		conds = append(conds, "i.user_id = "+arg(f.UserID))
	}
	if f.Username != "" {
		conds = append(conds, "i.username = "+arg(f.Username))
	}
	if f.TagID != 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = i.id AND t.tag_id = "+arg(f.TagID)+")")
	}
	if f.TagName != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = i.id AND t.tag_name = "+arg(f.TagName)+")")
	}
	if f.RequestedBy != "" {
		if f.Favorites != nil && *f.Favorites {
			conds = append(conds, "EXISTS (SELECT 1 FROM user_favorites uf WHERE uf.item_id = i.id AND uf.username = "+arg(f.RequestedBy)+")")
		}
		if f.Hidden != nil && *f.Hidden {
			conds = append(conds, "EXISTS (SELECT 1 FROM user_hidden uh WHERE uh.item_id = i.id AND uh.username = "+arg(f.RequestedBy)+")")
		} else {
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM user_hidden uh WHERE uh.item_id = i.id AND uh.username = "+arg(f.RequestedBy)+")")
		}
	}

	order, ok := sortOrders[f.Sort]
	if !ok {
		order = "i.created_at DESC"
	}

	query := `SELECT i.id, i.name, i.item_type, i.username, i.user_id, i.rating,
			     i.download_count, i.like_count, i.comment_count, i.used_count,
			     COALESCE((SELECT string_agg(t.tag_name, ',' ORDER BY t.tag_name)
			               FROM item_tags t WHERE t.item_id = i.id), ''),
			     i.created_at, i.last_activity_at
			  FROM catalog_items i`
	if len(conds) > 0 {
		query += "\n\t\t\t  WHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\t\t  ORDER BY " + order + ", i.id" +
		"\n\t\t\t  OFFSET " + arg(cursor) + " LIMIT " + arg(limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.CatalogItem
	for rows.Next() {
		var item models.CatalogItem
		var tags string
		if err := rows.Scan(&item.ID, &item.Name, &item.ItemType, &item.Username,
			&item.UserID, &item.Rating, &item.DownloadCount, &item.LikeCount,
			&item.CommentCount, &item.UsedCount, &tags,
			&item.CreatedAt, &item.LastActivityAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if tags != "" {
			item.Tags = strings.Split(tags, ",")
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
