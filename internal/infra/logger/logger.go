package logger

import (
	"log/slog"
	"os"
)

// New возвращает корневой логгер сервиса. В dev пишем и debug.
func New(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "quotad", "env", env)
}
