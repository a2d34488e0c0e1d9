package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	logFileName = "timerbot.log"
)

func SetupLogger(env, logPath string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		var w io.Writer = os.Stdout
		f, err := os.OpenFile(filepath.Join(logPath, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			w = io.MultiWriter(os.Stdout, f)
		}
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
		if err != nil {
			logger.Warn("log file not available, logging to stdout only", slog.String("error", err.Error()))
		}
	default:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return logger
}

// MessageSender delivers a plain text line to an operator, e.g. the Telegram admin chat.
type MessageSender interface {
	SendMessage(msg string)
}

// forwardQueueSize bounds the messages waiting for the sender; records
// arriving while it is full are not forwarded.
const forwardQueueSize = 64

// SetupTelegramHandler returns a logger that also forwards records at or above
// level to sender. Forwarding happens on a background goroutine so a slow
// sender never blocks the caller.
func SetupTelegramHandler(log *slog.Logger, sender MessageSender, level slog.Level) *slog.Logger {
	return slog.New(&forwardHandler{
		next:  log.Handler(),
		queue: newForwarder(sender, forwardQueueSize),
		level: level,
	})
}

type forwarder struct {
	sender MessageSender
	msgs   chan string
}

func newForwarder(sender MessageSender, size int) *forwarder {
	f := &forwarder{
		sender: sender,
		msgs:   make(chan string, size),
	}
	go f.run()
	return f
}

func (f *forwarder) run() {
	for msg := range f.msgs {
		f.sender.SendMessage(msg)
	}
}

func (f *forwarder) push(msg string) {
	select {
	case f.msgs <- msg:
	default:
	}
}

type forwardHandler struct {
	next  slog.Handler
	queue *forwarder
	level slog.Level
	attrs []slog.Attr
	group string
}

func (h *forwardHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || level >= h.level
}

func (h *forwardHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && h.queue.sender != nil {
		h.queue.push(format(r, h.attrs))
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *forwardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &forwardHandler{
		next:  h.next.WithAttrs(attrs),
		queue: h.queue,
		level: h.level,
		attrs: merged,
		group: h.group,
	}
}

func (h *forwardHandler) WithGroup(name string) slog.Handler {
	return &forwardHandler{
		next:  h.next.WithGroup(name),
		queue: h.queue,
		level: h.level,
		attrs: h.attrs,
		group: name,
	}
}

func format(r slog.Record, attrs []slog.Attr) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", r.Level.String(), r.Message))
	for _, a := range attrs {
		sb.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteString(fmt.Sprintf("\n%s: %s", a.Key, a.Value.String()))
		return true
	})
	return sb.String()
}
