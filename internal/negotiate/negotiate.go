// Package negotiate реализует согласование кодирования ответа: разбор
// заголовка Accept-Encoding с q-значениями и выбор токена с учётом
// порядка предпочтений сервера. Результаты мемоизируются ограниченным
// кэшем, так как заголовки массово повторяются между клиентами.
package negotiate

import (
	"strconv"
	"strings"
	"sync"
)

// Negotiate выбирает кодирование из available (в порядке предпочтения
// сервера) по заголовку Accept-Encoding. Пустая строка — сжатия нет:
// клиент не прислал заголовок, явно отверг все кодеки (q=0) или
// перечислил только identity/неподдерживаемые токены.
//
// При равных весах побеждает более ранний токен из available; кандидат
// вытесняет текущего только при строго большем весе. Вес >= 1.0
// возвращается сразу — сильнее кандидата быть не может.
func Negotiate(acceptHeader string, available []string) string {
	if acceptHeader == "" {
		return ""
	}

	prefs := parseAcceptEncoding(acceptHeader)
	if len(prefs) == 0 {
		return ""
	}

	wildcard, hasWildcard := prefs["*"]

	best := ""
	bestWeight := 0.0
	for _, token := range available {
		weight, explicit := prefs[token]
		if !explicit {
			if !hasWildcard {
				continue
			}
			weight = wildcard
		}
		if weight >= 1.0 {
			return token
		}
		if weight > bestWeight {
			best = token
			bestWeight = weight
		}
	}

	if bestWeight > 0 {
		return best
	}
	return ""
}

// parseAcceptEncoding разбирает заголовок в отображение "токен -> вес".
// Токены приводятся к нижнему регистру и обрезаются; последнее вхождение
// дубликата побеждает. Нечитаемый или отсутствующий вес считается 1.0,
// испорченные сегменты пропускаются без ошибки.
func parseAcceptEncoding(header string) map[string]float64 {
	prefs := make(map[string]float64)

	for _, part := range strings.Split(header, ",") {
		token, params, hasParams := strings.Cut(part, ";")
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}

		weight := 1.0
		if hasParams {
			if v, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(params)), "q="); ok {
				if q, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
					weight = q
					if weight < 0 {
						weight = 0
					}
					if weight > 1 {
						weight = 1
					}
				}
			}
		}

		prefs[token] = weight
	}

	return prefs
}

// DefaultCacheSize — ёмкость кэша согласования по умолчанию.
const DefaultCacheSize = 1024

// Cache — ограниченный потокобезопасный кэш результатов согласования.
// Ключ — пара (заголовок, набор доступных кодирований). Это единственное
// состояние, разделяемое между конкурентными запросами.
type Cache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]string
}

// NewCache создаёт кэш не более чем на max записей.
// Неположительный max заменяется на DefaultCacheSize.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{
		max:     max,
		entries: make(map[string]string),
	}
}

// Negotiate — мемоизированный вариант Negotiate.
func (c *Cache) Negotiate(acceptHeader string, available []string) string {
	key := acceptHeader + "\x00" + strings.Join(available, ",")

	c.mu.RLock()
	encoding, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return encoding
	}

	encoding = Negotiate(acceptHeader, available)

	c.mu.Lock()
	if len(c.entries) >= c.max {
		// Реальные заголовки группируются вокруг нескольких браузерных
		// значений, переполнение — редкость: полный сброс дешевле
		// учёта порядка вытеснения на горячем пути.
		c.entries = make(map[string]string, c.max)
	}
	c.entries[key] = encoding
	c.mu.Unlock()

	return encoding
}

// Len возвращает текущее число записей в кэше.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
