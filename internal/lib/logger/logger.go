package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const logFileName = "genie.log"

// SetupLogger builds the process logger for the given environment. Local runs
// log text to stdout, dev and prod write JSON into logPath.
func SetupLogger(env, logPath string) *slog.Logger {
	var lg *slog.Logger

	switch env {
	case envLocal:
		lg = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		lg = slog.New(slog.NewJSONHandler(logWriter(logPath), &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		lg = slog.New(slog.NewJSONHandler(logWriter(logPath), &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		lg = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return lg
}

func logWriter(logPath string) io.Writer {
	if logPath == "" {
		return os.Stdout
	}
	path := filepath.Join(logPath, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v; using stdout\n", path, err)
		return os.Stdout
	}
	return f
}
