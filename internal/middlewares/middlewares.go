// Package middlewares содержит промежуточные обработчики HTTP-запросов.
// Основной из них — CompressMiddleware: он согласует кодирование ответа
// с клиентом и прозрачно сжимает исходящее тело, не вмешиваясь в запросы,
// для которых сжатие не выбрано или исключено правилами.
package middlewares

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sol1corejz/go-http-compress/internal/codec"
	"github.com/sol1corejz/go-http-compress/internal/logger"
	"github.com/sol1corejz/go-http-compress/internal/models"
	"github.com/sol1corejz/go-http-compress/internal/negotiate"
	"github.com/sol1corejz/go-http-compress/internal/responder"
)

// CompressConfig — настройки слоя сжатия, общие для всех запросов.
// Реестр и кэш согласования строятся один раз и далее не изменяются.
type CompressConfig struct {
	Registry             *codec.Registry
	Cache                *negotiate.Cache
	MinSize              int
	ExcludedPaths        []*regexp.Regexp
	ExcludedContentTypes []string
}

// NewCompressConfig собирает конфигурацию слоя сжатия.
// Некорректный шаблон исключаемого пути — ошибка конфигурации.
func NewCompressConfig(registry *codec.Registry, minSize int, excludedPaths, excludedTypes []string) (*CompressConfig, error) {
	cfg := &CompressConfig{
		Registry: registry,
		Cache:    negotiate.NewCache(negotiate.DefaultCacheSize),
		MinSize:  minSize,
	}

	for _, pattern := range excludedPaths {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("middlewares: bad excluded path pattern %q: %w", pattern, err)
		}
		cfg.ExcludedPaths = append(cfg.ExcludedPaths, re)
	}

	for _, ct := range excludedTypes {
		ct = strings.ToLower(strings.TrimSpace(ct))
		if ct != "" {
			cfg.ExcludedContentTypes = append(cfg.ExcludedContentTypes, ct)
		}
	}

	return cfg, nil
}

// CompressMiddleware оборачивает обработчик слоем сжатия ответа.
// Запрос уходит в обработчик с нетронутым ResponseWriter, если это
// протокольный upgrade, путь исключён правилами или согласование не
// выбрало кодирование. Иначе ответ перехватывается CompressWriter-ом,
// который ведёт конечный автомат сжатия.
func CompressMiddleware(cfg *CompressConfig, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			h.ServeHTTP(w, r)
			return
		}

		for _, re := range cfg.ExcludedPaths {
			if re.MatchString(r.URL.Path) {
				h.ServeHTTP(w, r)
				return
			}
		}

		encoding := cfg.Cache.Negotiate(r.Header.Get("Accept-Encoding"), cfg.Registry.Available())
		if encoding == "" {
			h.ServeHTTP(w, r)
			return
		}

		factory, ok := cfg.Registry.Factory(encoding)
		if !ok {
			h.ServeHTTP(w, r)
			return
		}

		cw := NewCompressWriter(w, factory, encoding, cfg.MinSize, cfg.ExcludedContentTypes)
		h.ServeHTTP(cw, r)

		// Завершающий фрагмент тела испускается после возврата обработчика.
		if err := cw.Close(); err != nil {
			logger.Log.Debug("response compression aborted", zap.Error(err))
		}
	}
}

// CompressWriter — мост между http.ResponseWriter и событиями ответа.
// Каждый Write придерживает фрагмент до следующего Write, Flush или конца
// обработчика: только так становится известно значение MoreBody. Благодаря
// этому ответ из одной записи доходит до responder-а единственным
// завершающим фрагментом и получает точный Content-Length.
type CompressWriter struct {
	w             http.ResponseWriter
	resp          *responder.Responder
	excludedTypes []string

	status          int
	started         bool
	passthrough     bool
	wroteDownstream bool
	pending         []byte
	hasPending      bool
	err             error
}

// NewCompressWriter создаёт обёртку над ResponseWriter для одного ответа.
func NewCompressWriter(w http.ResponseWriter, factory codec.Factory, encoding string, minSize int, excludedTypes []string) *CompressWriter {
	cw := &CompressWriter{
		w:             w,
		excludedTypes: excludedTypes,
		status:        http.StatusOK,
	}
	cw.resp = responder.New(cw.emit, factory, encoding, minSize)
	return cw
}

// Header возвращает заголовки ответа.
func (c *CompressWriter) Header() http.Header {
	return c.w.Header()
}

// WriteHeader фиксирует статус и передаёт responder-у стартовое событие.
// Ответ с исключённым Content-Type уходит напрямую, минуя сжатие.
func (c *CompressWriter) WriteHeader(statusCode int) {
	if c.started || c.passthrough {
		return
	}
	c.status = statusCode

	if c.contentTypeExcluded() {
		c.passthrough = true
		c.w.WriteHeader(statusCode)
		return
	}

	c.started = true
	if err := c.resp.Send(models.StartEvent{
		Status:  statusCode,
		Headers: captureHeaders(c.w.Header()),
	}); err != nil {
		c.err = err
	}
}

// Write принимает очередной фрагмент тела от обработчика.
func (c *CompressWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if !c.started && !c.passthrough {
		c.WriteHeader(c.status)
		if c.err != nil {
			return 0, c.err
		}
	}
	if c.passthrough {
		return c.w.Write(p)
	}

	if err := c.release(true); err != nil {
		return 0, err
	}

	// Копия обязательна: после возврата из Write обработчик может
	// переиспользовать свой буфер.
	c.pending = append(c.pending[:0], p...)
	c.hasPending = true
	return len(p), nil
}

// Flush проталкивает придержанный фрагмент и, если транспорт умеет,
// сбрасывает его в сеть. Ответ после Flush заведомо потоковый.
func (c *CompressWriter) Flush() {
	if c.err == nil && !c.passthrough {
		if !c.started {
			c.WriteHeader(c.status)
		}
		if err := c.release(true); err != nil {
			return
		}
	}
	// Пока responder придерживает стартовое событие, сбрасывать нечего:
	// преждевременный Flush зафиксировал бы ещё не переписанные заголовки.
	if !c.passthrough && !c.wroteDownstream {
		return
	}
	if f, ok := c.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Close завершает ответ: испускает завершающий фрагмент тела.
// Вызывается middleware-ом строго один раз после возврата обработчика.
func (c *CompressWriter) Close() error {
	if c.passthrough || c.err != nil {
		return c.err
	}
	if !c.started {
		c.WriteHeader(c.status)
		if c.passthrough || c.err != nil {
			return c.err
		}
	}
	return c.release(false)
}

// release передаёт придержанный фрагмент responder-у.
// more=false помечает фрагмент завершающим; пустой завершающий фрагмент
// тоже передаётся — транспорту нужен маркер конца ответа.
func (c *CompressWriter) release(more bool) error {
	if !c.hasPending && more {
		return nil
	}
	body := c.pending
	c.pending = nil
	c.hasPending = false

	if err := c.resp.Send(models.BodyEvent{Body: body, MoreBody: more}); err != nil {
		c.err = err
		return err
	}
	return nil
}

// emit — приёмник событий responder-а: переписанные события
// транслируются обратно в настоящий ResponseWriter.
func (c *CompressWriter) emit(ev models.ResponseEvent) error {
	switch ev := ev.(type) {
	case models.StartEvent:
		h := c.w.Header()
		for k := range h {
			delete(h, k)
		}
		for _, hd := range ev.Headers {
			h.Add(hd.Name, hd.Value)
		}
		c.wroteDownstream = true
		c.w.WriteHeader(ev.Status)
	case models.BodyEvent:
		if len(ev.Body) == 0 {
			return nil
		}
		if _, err := c.w.Write(ev.Body); err != nil {
			return err
		}
	}
	return nil
}

func (c *CompressWriter) contentTypeExcluded() bool {
	if len(c.excludedTypes) == 0 {
		return false
	}
	ct := strings.ToLower(c.w.Header().Get("Content-Type"))
	if mt, _, found := strings.Cut(ct, ";"); found {
		ct = mt
	}
	ct = strings.TrimSpace(ct)
	for _, excluded := range c.excludedTypes {
		if ct == excluded {
			return true
		}
	}
	return false
}

// captureHeaders снимает упорядоченный снимок заголовков ответа.
// Ключи сортируются: map не сохраняет порядок, а снимок должен быть
// детерминированным; значения одного ключа идут в порядке добавления.
func captureHeaders(h http.Header) []models.Header {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []models.Header
	for _, k := range keys {
		for _, v := range h[k] {
			out = append(out, models.Header{Name: k, Value: v})
		}
	}
	return out
}
