package hgcalhistory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler is a slog.Handler that prints the timestamp and every attribute
// value in brackets, followed by the message:
//
//	[2018/09/26 15:04:05] [event] [12] track has no vertex
type Handler struct {
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
	out   io.Writer
}

func NewHandler(o io.Writer, opts *slog.HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{out: o, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{level: h.level, attrs: merged, mu: h.mu, out: h.out}
}

// WithGroup is a no-op: groups only qualify keys and keys are not printed.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	strs := []string{r.Time.Format("[2006/01/02 15:04:05]")}
	for _, a := range h.attrs {
		strs = append(strs, fmt.Sprintf("[%s]", a.Value.String()))
	}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, fmt.Sprintf("[%s]", a.Value.String()))
		return true
	})
	strs = append(strs, r.Message)

	line := strings.Join(strs, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

// VerbosityLevel maps the verbosity setting of the programs to a log level.
func VerbosityLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// NewLogger returns a logger writing bracketed lines to stdout, with errors
// additionally emitted as JSON on stderr.
func NewLogger(verbosity int) *slog.Logger {
	opts := &slog.HandlerOptions{Level: VerbosityLevel(verbosity)}
	return slog.New(&teeHandler{
		text: NewHandler(os.Stdout, opts),
		errs: slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	})
}

type teeHandler struct {
	text slog.Handler
	errs slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.text.Enabled(ctx, level) || t.errs.Enabled(ctx, level)
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		if err := t.errs.Handle(ctx, r.Clone()); err != nil {
			return err
		}
		return nil
	}
	if t.text.Enabled(ctx, r.Level) {
		return t.text.Handle(ctx, r)
	}
	return nil
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{text: t.text.WithAttrs(attrs), errs: t.errs.WithAttrs(attrs)}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{text: t.text.WithGroup(name), errs: t.errs.WithGroup(name)}
}
