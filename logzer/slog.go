package logzer

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// SLogHandler passes slog records to the global zerolog logger.
// Libraries logging with slog.Default end up in the same writers chain.
type SLogHandler struct {
	attrs  []slog.Attr
	groups []string

	CallerSkipFrame int
	GroupsFieldName string
}

func level(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	}
	return zerolog.ErrorLevel
}

func (h *SLogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return zerolog.GlobalLevel() <= level(l)
}

func (h *SLogHandler) Handle(_ context.Context, r slog.Record) error {
	e := zlog.WithLevel(level(r.Level))
	if len(h.groups) > 0 {
		name := h.GroupsFieldName
		if name == "" {
			name = "logger"
		}
		e = e.Strs(name, h.groups)
	}
	add := func(attr slog.Attr) bool {
		switch attr.Value.Kind() {
		case slog.KindBool:
			e = e.Bool(attr.Key, attr.Value.Bool())
		case slog.KindDuration:
			e = e.Dur(attr.Key, attr.Value.Duration())
		case slog.KindFloat64:
			e = e.Float64(attr.Key, attr.Value.Float64())
		case slog.KindInt64:
			e = e.Int64(attr.Key, attr.Value.Int64())
		case slog.KindUint64:
			e = e.Uint64(attr.Key, attr.Value.Uint64())
		case slog.KindString, slog.KindGroup:
			e = e.Str(attr.Key, attr.Value.String())
		case slog.KindTime:
			e = e.Time(attr.Key, attr.Value.Time())
		default:
			e = e.Any(attr.Key, attr.Value.Any())
		}
		return true
	}
	for _, attr := range h.attrs {
		add(attr)
	}
	r.Attrs(add)
	e.CallerSkipFrame(h.CallerSkipFrame).Msg(r.Message)
	return nil
}

func (h *SLogHandler) clone() *SLogHandler {
	return &SLogHandler{
		attrs:           append([]slog.Attr{}, h.attrs...),
		groups:          append([]string{}, h.groups...),
		CallerSkipFrame: h.CallerSkipFrame,
		GroupsFieldName: h.GroupsFieldName,
	}
}

func (h *SLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nested := h.clone()
	nested.attrs = append(nested.attrs, attrs...)
	return nested
}

func (h *SLogHandler) WithGroup(name string) slog.Handler {
	nested := h.clone()
	nested.groups = append(nested.groups, name)
	return nested
}
