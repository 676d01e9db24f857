// Package logger предоставляет функции для инициализации и использования
// логирования в приложении, включая логирование HTTP-запросов с помощью
// библиотеки zap.
package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Log является глобальной переменной для использования логгера. Изначально настроен на no-op логгер.
var Log = zap.NewNop()

// Initialize настраивает и инициализирует логгер с указанным уровнем логирования.
// Возвращает ошибку, если уровень логирования некорректен или произошла ошибка при создании логгера.
func Initialize(level string) error {

	// Парсит уровень логирования.
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	// Создаёт конфигурацию логгера с настройками для production.
	cfg := zap.NewProductionConfig()

	// Устанавливает уровень логирования.
	cfg.Level = lvl

	// Создаёт новый логгер с заданной конфигурацией.
	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	// Устанавливает глобальный логгер.
	Log = zl
	return nil
}

// RequestLogger оборачивает HTTP-обработчик, логируя информацию о запросах:
// путь, метод, заголовок Accept-Encoding, идентификатор запроса и время выполнения.
func RequestLogger(h http.HandlerFunc) http.HandlerFunc {
	logFn := func(w http.ResponseWriter, r *http.Request) {

		// Сохраняем время начала обработки запроса.
		start := time.Now()

		// Идентификатор запроса для сопоставления записей в логе.
		requestID := uuid.New().String()

		// Выполняем оригинальный обработчик.
		h(w, r)

		// Записываем информацию о запросе в лог.
		Log.Info("got incoming HTTP request",
			zap.String("request_id", requestID),
			zap.String("path", r.RequestURI),
			zap.String("method", r.Method),
			zap.String("accept_encoding", r.Header.Get("Accept-Encoding")),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return logFn
}
