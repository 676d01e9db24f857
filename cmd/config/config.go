// Package config читает конфигурацию приложения из флагов командной строки
// с переопределением через переменные окружения.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// Параметры запуска. Заполняются в ParseFlags.
var (
	FlagRunAddr  string
	FlagLogLevel string
	EnableHTTPS  bool

	// MinSize — минимальный размер тела в байтах, начиная с которого
	// целиком пришедший ответ сжимается.
	MinSize int

	// Encodings — поддерживаемые кодирования в порядке предпочтения сервера.
	Encodings []string

	// Уровни сжатия для каждого кодека.
	GzipLevel    int
	DeflateLevel int
	BrotliLevel  int
	ZstdLevel    int

	// ExcludedPaths — регулярные выражения путей, исключённых из сжатия.
	ExcludedPaths []string

	// ExcludedContentTypes — типы содержимого, исключённые из сжатия
	// (например, text/event-stream).
	ExcludedContentTypes []string

	DefaultEncodings = "gzip,deflate,br,zstd"
)

// ParseFlags разбирает флаги и применяет переопределения из окружения.
func ParseFlags() {
	var (
		encodings     string
		excludedPaths string
		excludedTypes string
	)

	flag.StringVar(&FlagRunAddr, "a", ":8080", "address and port to run server")
	flag.StringVar(&FlagLogLevel, "l", "info", "log level")
	flag.BoolVar(&EnableHTTPS, "s", false, "enable HTTPS with a self-signed certificate")
	flag.IntVar(&MinSize, "m", 500, "minimum body size in bytes to compress")
	flag.StringVar(&encodings, "e", DefaultEncodings, "supported encodings in server preference order")
	flag.IntVar(&GzipLevel, "gzip-level", 6, "gzip compression level")
	flag.IntVar(&DeflateLevel, "deflate-level", 6, "deflate compression level")
	flag.IntVar(&BrotliLevel, "brotli-level", 4, "brotli compression level")
	flag.IntVar(&ZstdLevel, "zstd-level", 3, "zstd compression level")
	flag.StringVar(&excludedPaths, "x", "", "comma-separated path patterns excluded from compression")
	flag.StringVar(&excludedTypes, "t", "", "comma-separated content types excluded from compression")
	flag.Parse()

	if envRunAddr := os.Getenv("SERVER_ADDRESS"); envRunAddr != "" {
		FlagRunAddr = envRunAddr
	}

	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		FlagLogLevel = envLogLevel
	}

	if envHTTPS := os.Getenv("ENABLE_HTTPS"); envHTTPS != "" {
		EnableHTTPS = envHTTPS == "true" || envHTTPS == "1"
	}

	if envMinSize := os.Getenv("MIN_SIZE"); envMinSize != "" {
		if v, err := strconv.Atoi(envMinSize); err == nil {
			MinSize = v
		}
	}

	if envEncodings := os.Getenv("ENCODINGS"); envEncodings != "" {
		encodings = envEncodings
	}

	if envPaths := os.Getenv("EXCLUDED_PATHS"); envPaths != "" {
		excludedPaths = envPaths
	}

	if envTypes := os.Getenv("EXCLUDED_CONTENT_TYPES"); envTypes != "" {
		excludedTypes = envTypes
	}

	Encodings = splitList(encodings)
	ExcludedPaths = splitList(excludedPaths)
	ExcludedContentTypes = splitList(excludedTypes)
}

// splitList разбирает список, разделённый запятыми, отбрасывая пустые элементы.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
