package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tradebook/internal/config"
	"tradebook/internal/logger"
)

// configureLogging applies level and format, tees the log to app.log_path
// and enables the message dump when app.message_log is set.
func configureLogging(cfg config.AppConfig) ([]io.Closer, error) {
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)

	var closers []io.Closer
	if path := strings.TrimSpace(cfg.LogPath); path != "" {
		f, err := openAppend(path)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, f)
		logger.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		logger.SetOutput(os.Stdout)
	}

	switch path := strings.TrimSpace(cfg.MessageLog); path {
	case "":
		logger.SetMessageWriter(nil)
	case "-":
		logger.SetMessageWriter(os.Stdout)
	default:
		f, err := openAppend(path)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("open message log: %w", err)
		}
		closers = append(closers, f)
		logger.SetMessageWriter(f)
	}
	return closers, nil
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
