package klogger

import (
	"context"
	"log/slog"
)

// SlogLevelTrace is the slog level that maps to LevelTrace.
const SlogLevelTrace = slog.LevelDebug - 4

// TargetKey is the attribute key whose value becomes the record target.
const TargetKey = "target"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum slog level passed to the console.
	// Defaults to slog.LevelInfo if nil.
	Level slog.Leveler
	// Target is used when a record carries no TargetKey attribute.
	Target string
	// Console receives the records. Defaults to the global console.
	Console *Console
}

// Handler is a slog.Handler that writes to a Console.
//
// Only the level, the message and a top-level TargetKey attribute are used;
// other attributes are ignored. Once a group is open, a "target" attribute
// belongs to the group and no longer sets the target.
type Handler struct {
	opts    HandlerOptions
	target  string
	grouped bool
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a handler writing to opts.Console, or to the global
// console when it is nil. A nil opts is the same as &HandlerOptions{}.
func NewHandler(opts *HandlerOptions) *Handler {
	h := &Handler{}
	if opts != nil {
		h.opts = *opts
	}
	h.target = h.opts.Target
	return h
}

// Enabled implements slog.Handler. The threshold belongs to the slog side.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return l >= threshold
}

// Handle implements slog.Handler. It never returns an error.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	c := h.opts.Console
	if c == nil {
		if c = Default(); c == nil {
			return nil
		}
	}
	target := h.target
	if !h.grouped {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == TargetKey {
				target = a.Value.String()
				return false
			}
			return true
		})
	}
	c.Log(Record{Level: FromSlogLevel(r.Level), Target: target, Message: r.Message})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	if h.grouped {
		return &h2
	}
	for _, a := range attrs {
		if a.Key == TargetKey {
			h2.target = a.Value.String()
		}
	}
	return &h2
}

// WithGroup implements slog.Handler. Group names are not rendered.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.grouped = true
	return &h2
}

// FromSlogLevel maps a slog level onto the nearest Level at or below its
// severity.
func FromSlogLevel(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	case l >= slog.LevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// ToSlogLevel is the inverse of FromSlogLevel.
func ToSlogLevel(l Level) slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	case LevelTrace:
		return SlogLevelTrace
	default:
		return slog.LevelError + 4
	}
}
