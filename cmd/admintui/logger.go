package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitializeLogger points zerolog at a file, since the terminal belongs to
// the dashboard, and returns a slog logger writing to the same place for the
// dashboard controller.
func InitializeLogger(logLevel string, logFilePath string) (*slog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}
	zerolog.SetGlobalLevel(level)

	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	log.Logger = zerolog.New(file).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339

	slogLevel := slog.LevelInfo
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		slogLevel = slog.LevelDebug
	case zerolog.WarnLevel:
		slogLevel = slog.LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		slogLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slogLevel})), file, nil
}
