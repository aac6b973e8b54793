package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MessageSender delivers a plain text notice to the bot administrator.
type MessageSender interface {
	SendMessage(msg string)
}

// TelegramHandler duplicates records at or above level to the admin chat.
type TelegramHandler struct {
	next   slog.Handler
	sender MessageSender
	level  slog.Level
	attrs  []slog.Attr
}

// SetupTelegramHandler wraps the logger so that important records also reach
// the administrator.
func SetupTelegramHandler(lg *slog.Logger, sender MessageSender, level slog.Level) *slog.Logger {
	if sender == nil {
		return lg
	}
	return slog.New(&TelegramHandler{
		next:   lg.Handler(),
		sender: sender,
		level:  level,
	})
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level {
		h.sender.SendMessage(h.format(r))
	}
	return h.next.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TelegramHandler{
		next:   h.next.WithAttrs(attrs),
		sender: h.sender,
		level:  h.level,
		attrs:  merged,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		next:   h.next.WithGroup(name),
		sender: h.sender,
		level:  h.level,
		attrs:  h.attrs,
	}
}

func (h *TelegramHandler) format(r slog.Record) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", r.Level.String(), r.Message))
	for _, a := range h.attrs {
		sb.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
		return true
	})
	return sb.String()
}
