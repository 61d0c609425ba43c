package display

import (
	"log/slog"
	"strings"
)

// NewLogHandler returns a slog.Handler whose records are written through
// d.Log, so log lines end up above any active bars instead of tearing them.
func NewLogHandler(d Display, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(&logWriter{d: d}, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
}

type logWriter struct {
	d Display
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.d.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
