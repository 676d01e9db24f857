// Package headers содержит чистые функции для работы с упорядоченным списком
// заголовков ответа: поиск, замена и удаление без учёта регистра имени.
// Перезапись заголовков в responder детерминирована именно за счёт того,
// что все операции выражены через эти функции, а не через map.
package headers

import (
	"strings"

	"github.com/sol1corejz/go-http-compress/internal/models"
)

// Get возвращает значение первого заголовка с данным именем.
// Второе значение — признак наличия заголовка.
func Get(hs []models.Header, name string) (string, bool) {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Set заменяет значение первого заголовка с данным именем, сохраняя его
// исходное написание. Если заголовка нет, пара добавляется в конец списка.
func Set(hs []models.Header, name, value string) []models.Header {
	for i, h := range hs {
		if strings.EqualFold(h.Name, name) {
			hs[i].Value = value
			return hs
		}
	}
	return append(hs, models.Header{Name: name, Value: value})
}

// Remove удаляет все заголовки с данным именем.
func Remove(hs []models.Header, name string) []models.Header {
	out := hs[:0]
	for _, h := range hs {
		if !strings.EqualFold(h.Name, name) {
			out = append(out, h)
		}
	}
	return out
}

// MergeVary дописывает значение в заголовок Vary, не дублируя уже
// перечисленные токены. Существующие значения не перезаписываются.
func MergeVary(hs []models.Header, value string) []models.Header {
	for i, h := range hs {
		if !strings.EqualFold(h.Name, "Vary") {
			continue
		}
		for _, part := range strings.Split(h.Value, ",") {
			if strings.EqualFold(strings.TrimSpace(part), value) {
				return hs
			}
		}
		hs[i].Value = h.Value + ", " + value
		return hs
	}
	return append(hs, models.Header{Name: "Vary", Value: value})
}

// Clone возвращает независимую копию списка заголовков.
func Clone(hs []models.Header) []models.Header {
	out := make([]models.Header, len(hs))
	copy(out, hs)
	return out
}
