// Package strmap содержит вспомогательные функции для работы со строковыми
// словарями фильтров. Используется кодеком параметров запроса и хранилищем
// пользовательских выборок.
package strmap

// RemoveEmpty возвращает копию словаря без записей с пустыми значениями.
// Пустым считается только значение "": строки "0" и "false" — осмысленные
// значения фильтров и сохраняются. Для nil возвращается пустой словарь.
func RemoveEmpty(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for key, value := range m {
		if value == "" {
			continue
		}
		result[key] = value
	}
	return result
}
