// Package telemetry предоставляет structured logging на базе log/slog.
//
// Конфигурация через переменные окружения:
//   - LOG_LEVEL: DEBUG, INFO (default), WARN, ERROR
//   - LOG_FORMAT: json (default), text
package telemetry
