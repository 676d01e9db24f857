package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Factory создаёт свежий экземпляр кодека для одного ответа.
type Factory func() (Codec, error)

// Levels задаёт уровни сжатия для каждого поддерживаемого кодека.
type Levels struct {
	Gzip    int
	Deflate int
	Brotli  int
	Zstd    int
}

// DefaultLevels возвращает уровни сжатия по умолчанию.
func DefaultLevels() Levels {
	return Levels{Gzip: 6, Deflate: 6, Brotli: 4, Zstd: 3}
}

type entry struct {
	token   string
	factory Factory
}

// Registry — неизменяемое упорядоченное соответствие токена кодирования
// фабрике кодека. Порядок токенов задаёт предпочтения сервера при
// согласовании и фиксируется один раз на этапе конфигурации.
type Registry struct {
	entries   []entry
	available []string
}

// NewRegistry строит реестр по списку токенов в порядке предпочтения сервера.
// Неизвестный токен, дубликат или некорректный уровень сжатия — ошибка
// конфигурации: она возвращается здесь и никогда не доходит до запроса.
func NewRegistry(order []string, levels Levels) (*Registry, error) {
	if len(order) == 0 {
		return nil, errors.New("codec: empty encoding list")
	}

	r := &Registry{}
	seen := make(map[string]struct{}, len(order))

	for _, raw := range order {
		token := strings.ToLower(strings.TrimSpace(raw))
		if _, dup := seen[token]; dup {
			return nil, fmt.Errorf("codec: duplicate encoding %q", token)
		}
		seen[token] = struct{}{}

		var factory Factory
		switch token {
		case "gzip":
			level := levels.Gzip
			factory = func() (Codec, error) { return NewGzip(level) }
		case "deflate":
			level := levels.Deflate
			factory = func() (Codec, error) { return NewDeflate(level) }
		case "br":
			level := levels.Brotli
			factory = func() (Codec, error) { return NewBrotli(level) }
		case "zstd":
			level := levels.Zstd
			factory = func() (Codec, error) { return NewZstd(level) }
		default:
			return nil, fmt.Errorf("codec: unsupported encoding %q", token)
		}

		// Пробная сборка проверяет уровень сжатия на этапе конфигурации.
		if _, err := factory(); err != nil {
			return nil, fmt.Errorf("codec: %s: %w", token, err)
		}

		r.entries = append(r.entries, entry{token: token, factory: factory})
		r.available = append(r.available, token)
	}

	return r, nil
}

// Available возвращает токены реестра в порядке предпочтения сервера.
// Возвращаемый срез принадлежит реестру, изменять его нельзя.
func (r *Registry) Available() []string {
	return r.available
}

// Factory возвращает фабрику кодека для токена.
func (r *Registry) Factory(token string) (Factory, bool) {
	for _, e := range r.entries {
		if e.token == token {
			return e.factory, true
		}
	}
	return nil, false
}

func errInvalidLevel(token string, level int) error {
	return fmt.Errorf("codec: %s: invalid compression level %d", token, level)
}
