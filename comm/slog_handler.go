package comm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type slogHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*slogHandler)(nil)

// NewSlogHandler returns a slog.Handler that emits logs through comm, so
// that library code logging with slog respects --json and --verbose.
func NewSlogHandler(level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &slogHandler{level: level}
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{})
	for _, attr := range h.attrs {
		collect(fields, nil, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		collect(fields, h.groups, attr)
		return true
	})

	level := commLevel(r.Level)

	if JsonEnabled() {
		obj := JsonMessage{
			"level":   level,
			"message": r.Message,
		}
		for k, v := range fields {
			if _, reserved := obj[k]; !reserved {
				obj[k] = v
			}
		}
		send("log", obj)
		return nil
	}

	msg := r.Message
	if len(fields) > 0 {
		var parts []string
		for k, v := range fields {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ", "))
	}
	Logl(level, msg)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// attrs only belong to the groups opened before them
	for i := len(h.groups) - 1; i >= 0; i-- {
		args := make([]interface{}, len(attrs))
		for j, attr := range attrs {
			args[j] = attr
		}
		attrs = []slog.Attr{slog.Group(h.groups[i], args...)}
	}

	return &slogHandler{
		level:  h.level,
		groups: h.groups,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogHandler{
		level:  h.level,
		groups: append(append([]string{}, h.groups...), name),
		attrs:  h.attrs,
	}
}

func collect(fields map[string]interface{}, groups []string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		next := groups
		if attr.Key != "" {
			next = append(append([]string{}, groups...), attr.Key)
		}
		for _, child := range attr.Value.Group() {
			collect(fields, next, child)
		}
		return
	}

	if attr.Key == "" {
		return
	}
	key := strings.Join(append(append([]string{}, groups...), attr.Key), ".")
	fields[key] = attr.Value.Any()
}

func commLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
