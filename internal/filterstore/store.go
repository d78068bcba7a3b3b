// Package filterstore реализует хранилище пользовательских выборок фильтров.
// Выборка — это словарь «имя фильтра → значение», сохраняемый отдельно для
// двух разделов страницы каталога: моделей и приложений. Источником данных
// служит общий Redis; записи без значения вычищаются и при чтении,
// и перед записью.
package filterstore

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/model-catalog/internal/lib/strmap"
)

// Section — именованный раздел выборок.
type Section string

const (
	// SectionModels — выборка для страницы моделей.
	SectionModels Section = "models"
	// SectionApps — выборка для страницы приложений.
	SectionApps Section = "apps"
)

// Valid сообщает, известен ли раздел хранилищу.
func (s Section) Valid() bool {
	return s == SectionModels || s == SectionApps
}

// ErrUnknownSection возвращается при обращении к неизвестному разделу.
var ErrUnknownSection = fmt.Errorf("unknown filter section")

// KV описывает методы key-value хранилища, используемые store.
type KV interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Store читает и сохраняет выборки фильтров пользователей.
type Store struct {
	kv KV
}

// New создает новый Store поверх переданного key-value хранилища.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Read возвращает сохранённую выборку раздела section для пользователя
// username без пустых полей. Отсутствие данных — не ошибка: возвращается
// пустая выборка.
func (s *Store) Read(ctx context.Context, section Section, username string) (map[string]string, error) {
	const op = "filterstore.Read"
	if !section.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownSection, section)
	}

	var selection map[string]string
	found, err := s.kv.Get(ctx, key(section, username), &selection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return map[string]string{}, nil
	}
	return strmap.RemoveEmpty(selection), nil
}

// Save сохраняет выборку раздела section для пользователя username.
// Пустые поля вычищаются перед записью; запись бессрочная.
func (s *Store) Save(ctx context.Context, section Section, username string, selection map[string]string) error {
	const op = "filterstore.Save"
	if !section.Valid() {
		return fmt.Errorf("%s: %w: %q", op, ErrUnknownSection, section)
	}

	if err := s.kv.Set(ctx, key(section, username), strmap.RemoveEmpty(selection), 0); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func key(section Section, username string) string {
	return fmt.Sprintf("filters:%s:%s", section, username)
}
