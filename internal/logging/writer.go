package logging

import (
	"log/slog"
	"strings"
)

// Writer bridges the stdout/stderr of spawned tools (docker compose,
// package managers, the docker install script) into structured log
// lines, so subprocess output carries the same shape as stackctl's own.
type Writer struct {
	logger *slog.Logger
}

// NewWriter constructs a Writer bound to the provided logger.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write logs each non-blank line of p at info level. Subprocesses
// often flush several lines per write, so the chunk is split rather
// than logged whole.
func (w *Writer) Write(p []byte) (int, error) {
	if w.logger != nil {
		for _, line := range strings.Split(string(p), "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			w.logger.Info("subprocess", "line", line)
		}
	}
	return len(p), nil
}
