package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// slogHandler adapts a Logger to slog.Handler so libraries that expect a
// *slog.Logger can participate in the DEBUG namespace machinery.
type slogHandler struct {
	logger *Logger
}

// NewSlogLogger creates a *slog.Logger backed by a namespaced Logger.
func NewSlogLogger(namespace string) *slog.Logger {
	return slog.New(&slogHandler{logger: New(namespace)})
}

// Discard returns a slog.Logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (h *slogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return h.logger.Enabled()
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.logger.Enabled() {
		return nil
	}

	var msg strings.Builder
	msg.WriteString(levelPrefix(r.Level))
	msg.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&msg, " %s=%s", a.Key, a.Value.String())
		return true
	})

	h.logger.Print(msg.String())
	return nil
}

// WithAttrs does not persist attributes; the debug output format carries
// them inline per record.
func (h *slogHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

// WithGroup does not persist groups.
func (h *slogHandler) WithGroup(_ string) slog.Handler { return h }

func levelPrefix(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "[DEBUG] "
	case slog.LevelWarn:
		return "[WARN] "
	case slog.LevelError:
		return "[ERROR] "
	default:
		return ""
	}
}
