package logging

import (
	"context"
	"log/slog"
)

// AttrProvider supplies attributes that are evaluated per record, for
// values that change during a run (current vessel, queue depth).
type AttrProvider func() []slog.Attr

// ContextHandler wraps a handler and appends dynamically provided
// attributes to each record before delegating.
type ContextHandler struct {
	inner    slog.Handler
	provider AttrProvider
}

func NewContextHandler(inner slog.Handler, provider AttrProvider) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}
