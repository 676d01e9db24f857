// Package handlers содержит демонстрационные обработчики сервера.
// Каждый обработчик покрывает один путь конечного автомата сжатия:
// маленький ответ, большой ответ одним куском, потоковый ответ,
// ответ с собственным Content-Encoding и событийный поток.
package handlers

import (
	"net/http"
	"strings"
	"time"
)

// HandleSmall отвечает телом меньше порога сжатия: ответ уходит без изменений.
func HandleSmall(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("tiny"))
}

// HandleLarge отвечает большим телом одним куском: буферное сжатие
// с точным Content-Length.
func HandleLarge(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strings.Repeat("A", 1000)))
}

// HandleStream отдаёт тело несколькими фрагментами со сбросом буфера:
// потоковое сжатие без Content-Length.
func HandleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	f, ok := w.(http.Flusher)
	for i := 0; i < 3; i++ {
		w.Write([]byte(strings.Repeat("chunk ", 100)))
		if ok {
			f.Flush()
		}
	}
}

// HandleEncoded отвечает с уже выставленным Content-Encoding:
// слой сжатия обязан пропустить такой ответ байт в байт.
func HandleEncoded(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Encoding", "identity")
	w.Write([]byte(strings.Repeat("encoded by handler ", 100)))
}

// HandleEvents отдаёт событийный поток. Тип text/event-stream — кандидат
// на исключение из сжатия через конфигурацию.
func HandleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	f, ok := w.(http.Flusher)
	for i := 0; i < 3; i++ {
		w.Write([]byte("data: " + time.Now().Format(time.RFC3339Nano) + "\n\n"))
		if ok {
			f.Flush()
		}
	}
}

// HandlePing — проверка доступности сервера.
func HandlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
