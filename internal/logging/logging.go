package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SetupLogger installs a JSON slog logger as the process default, writing
// to stdout and, when filePath is non-empty, to a fresh log file as well.
func SetupLogger(filePath string) {
	var w io.Writer = os.Stdout

	if filePath != "" {
		logDir := filepath.Dir(filePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			panic("Failed to create log directory: " + err.Error())
		}

		err := os.Remove(filePath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Error("Failed to remove old log file", "path", filePath, "error", err)
		}

		logFile, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
		if err != nil {
			panic("Failed to open log file for writing: " + err.Error())
		}
		w = io.MultiWriter(os.Stdout, logFile)
	}

	opts := &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
		Level: slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
}
