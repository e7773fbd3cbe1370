package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
)

// NewLogger returns a JSON logger writing to w. Records carry the job name
// and project when they are set.
func NewLogger(w io.Writer, level slog.Level, job config.JobLoggerConfig) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	if job.Name != "" {
		logger = logger.With("job", job.Name)
	}
	if job.Project != "" {
		logger = logger.With("project", job.Project)
	}
	return logger
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Open builds the process logger from the job_logger settings. Records go to
// stdout and, when File is set, are appended to that file as well. The
// returned close function releases the file and must be called at exit.
func Open(job config.JobLoggerConfig) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(job.Level)
	if err != nil {
		return nil, nil, err
	}

	if job.File == "" {
		return NewLogger(os.Stdout, level, job), func() error { return nil }, nil
	}

	file, err := os.OpenFile(job.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", job.File, err)
	}

	closeFn := func() error {
		if err := file.Sync(); err != nil {
			file.Close()
			return fmt.Errorf("failed to flush log file %s: %w", job.File, err)
		}
		return file.Close()
	}
	return NewLogger(io.MultiWriter(os.Stdout, file), level, job), closeFn, nil
}
