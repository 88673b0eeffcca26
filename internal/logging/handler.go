// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package logging provides structured logging stamped with process identity.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// stampHandler wraps a slog.Handler to add the process identity to
// every record, so interleaved logs from several network processes
// remain attributable.
type stampHandler struct {
	handler slog.Handler
	service string
	version string
	server  string
}

// Handle adds the identity attributes to the log record.
func (h *stampHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)
	if h.server != "" {
		r.AddAttrs(slog.String("server", h.server))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
		server:  h.server,
	}
}

// WithGroup returns a new handler with the given group.
func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
		server:  h.server,
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty).
// server is the process's network name; empty omits the attribute.
// If w is nil, writes to os.Stderr.
func Setup(service, version, format, server string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	if format == "text" {
		baseHandler = slog.NewTextHandler(w, opts)
	} else {
		baseHandler = slog.NewJSONHandler(w, opts)
	}

	handler := &stampHandler{
		handler: baseHandler,
		service: service,
		version: version,
		server:  server,
	}

	return slog.New(handler)
}

// SetDefault sets up and configures the default logger.
func SetDefault(service, version, format, server string) {
	logger := Setup(service, version, format, server, nil)
	slog.SetDefault(logger)
}
