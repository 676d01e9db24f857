// Модуль main — входная точка демонстрационного сервера, на котором
// развёрнут слой сжатия ответов: инициализация конфигурации, реестра
// кодеков и запуск HTTP-сервера.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sol1corejz/go-http-compress/cmd/config"
	"github.com/sol1corejz/go-http-compress/internal/cert"
	"github.com/sol1corejz/go-http-compress/internal/codec"
	"github.com/sol1corejz/go-http-compress/internal/handlers"
	"github.com/sol1corejz/go-http-compress/internal/logger"
	"github.com/sol1corejz/go-http-compress/internal/middlewares"
)

// Глобальные переменные для информации о версии сборки.
var (
	buildVersion = "N/A" // Версия сборки, передается на этапе компиляции.
	buildDate    = "N/A" // Дата сборки, передается на этапе компиляции.
	buildCommit  = "N/A" // Коммит сборки, передается на этапе компиляции.
)

// main — основная функция, которая запускает приложение.
func main() {
	// Канал сообщения о закрытии соединений.
	idleConnsClosed := make(chan struct{})
	// Канал для перенаправления прерываний.
	sigint := make(chan os.Signal, 1)
	// Регистрация прерываний.
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	// Контекст отмены.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Вывод информации о версии сборки.
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	// Считывает флаги конфигурации и обновляет параметры запуска.
	config.ParseFlags()

	// Запускает сервер, передавая канал `sigint` для обработки сигналов.
	if err := run(ctx, sigint, idleConnsClosed); err != nil {
		logger.Log.Error("Failed to run server", zap.Error(err))
		return
	}

	<-idleConnsClosed
	// Сообщение о корректном завершении.
	logger.Log.Info("Server Shutdown gracefully")
}

// newCompressConfig собирает конфигурацию слоя сжатия из параметров запуска.
func newCompressConfig() (*middlewares.CompressConfig, error) {
	registry, err := codec.NewRegistry(config.Encodings, codec.Levels{
		Gzip:    config.GzipLevel,
		Deflate: config.DeflateLevel,
		Brotli:  config.BrotliLevel,
		Zstd:    config.ZstdLevel,
	})
	if err != nil {
		return nil, err
	}

	return middlewares.NewCompressConfig(registry, config.MinSize, config.ExcludedPaths, config.ExcludedContentTypes)
}

// newRouter определяет маршруты и подключает middleware.
//
// Маршруты:
// - "/small" (GET): ответ меньше порога сжатия.
// - "/large" (GET): большой ответ одним куском (буферное сжатие).
// - "/stream" (GET): потоковый ответ (сжатие без Content-Length).
// - "/encoded" (GET): ответ с собственным Content-Encoding.
// - "/events" (GET): событийный поток (кандидат на исключение).
// - "/ping" (GET): проверка доступности сервера.
//
// Middleware:
// - CompressMiddleware: согласование и сжатие ответа.
// - RequestLogger: логирование каждого входящего запроса.
func newRouter(compressCfg *middlewares.CompressConfig) chi.Router {
	r := chi.NewRouter()

	// Подключает обработчики для профилирования через пакет pprof.
	r.Mount("/debug/pprof", http.StripPrefix("/debug/pprof", http.HandlerFunc(pprof.Index)))
	r.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
	r.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	r.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	r.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))

	// Определяет основные маршруты для обработки запросов.
	r.Route("/", func(r chi.Router) {
		r.Get("/small", logger.RequestLogger(middlewares.CompressMiddleware(compressCfg, handlers.HandleSmall)))
		r.Get("/large", logger.RequestLogger(middlewares.CompressMiddleware(compressCfg, handlers.HandleLarge)))
		r.Get("/stream", logger.RequestLogger(middlewares.CompressMiddleware(compressCfg, handlers.HandleStream)))
		r.Get("/encoded", logger.RequestLogger(middlewares.CompressMiddleware(compressCfg, handlers.HandleEncoded)))
		r.Get("/events", logger.RequestLogger(middlewares.CompressMiddleware(compressCfg, handlers.HandleEvents)))
	})

	// Добавляет маршрут для проверки доступности сервера.
	r.Get("/ping", logger.RequestLogger(handlers.HandlePing))

	return r
}

// run запускает HTTP-сервер с подключённым слоем сжатия.
// Если запуск завершается с ошибкой, функция возвращает её.
func run(ctx context.Context, sigint chan os.Signal, idleConnsClosed chan struct{}) error {
	// Инициализирует логгер с заданным уровнем логирования.
	if err := logger.Initialize(config.FlagLogLevel); err != nil {
		return err
	}

	// Собирает реестр кодеков и настройки сжатия. Ошибки конфигурации
	// (неизвестный кодек, некорректный уровень) останавливают запуск.
	compressCfg, err := newCompressConfig()
	if err != nil {
		return err
	}

	logger.Log.Info("Running server",
		zap.String("address", config.FlagRunAddr),
		zap.Strings("encodings", compressCfg.Registry.Available()),
		zap.Int("min_size", config.MinSize),
	)

	// Создаем сервер.
	srv := &http.Server{
		Addr:    config.FlagRunAddr,
		Handler: newRouter(compressCfg),
	}

	// Горутина для обработки сигнала завершения.
	go func() {
		<-sigint

		// Закрываем сервер.
		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Error("HTTP server Shutdown failed", zap.Error(err))
		}

		// Закрываем канал для уведомления о завершении.
		close(idleConnsClosed)
	}()

	// Запускаем сервер.
	if config.EnableHTTPS {
		if !cert.CertExists() {
			logger.Log.Info("Generating new TLS certificate")
			certPEM, keyPEM := cert.GenerateCert()
			if err := cert.SaveCert(certPEM, keyPEM); err != nil {
				return fmt.Errorf("failed to save TLS certificate: %w", err)
			}
		}

		logger.Log.Info("Loading existing TLS certificate")
		if err := srv.ListenAndServeTLS(cert.CertificateFilePath, cert.KeyFilePath); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
