/*
 * acme65 - Wrapper for slog
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package logger supplies the slog.Handler the CLI installs as the
// default logger. Unlike a plain text handler, it also gates which
// records reach stderr by the assembler's "-v" verbosity level rather
// than by slog.Level alone, so "-v0" stays quiet on stderr while every
// record still goes to the optional log file.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogHandler writes every record to an optional log file, and mirrors
// it to stderr once the configured verbosity threshold is met.
type LogHandler struct {
	out       io.Writer
	h         slog.Handler
	mu        *sync.Mutex
	verbosity int
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{h: h.h.WithAttrs(attrs), mu: h.mu, verbosity: h.verbosity, out: h.out}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{h: h.h.WithGroup(name), mu: h.mu, verbosity: h.verbosity, out: h.out}
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, level, r.Message}

	if r.NumAttrs() != 0 {
		r.Attrs(func(a slog.Attr) bool {
			strs = append(strs, a.Value.String())
			return true
		})
	}
	result := strings.Join(strs, " ") + "\n"
	b := []byte(result)

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(b)
	}

	if h.verbosityAllows(r.Level) {
		_, err = os.Stderr.Write(b)
	}
	return err
}

// verbosityAllows maps the "-v0".."-v3" scale onto slog's levels:
// v0 shows only warnings and above, v1 adds info, v2 adds debug, v3
// shows every record the handler is enabled for.
func (h *LogHandler) verbosityAllows(level slog.Level) bool {
	switch {
	case h.verbosity >= 3:
		return true
	case h.verbosity == 2:
		return level >= slog.LevelDebug
	case h.verbosity == 1:
		return level >= slog.LevelInfo
	default:
		return level >= slog.LevelWarn
	}
}

// SetVerbosity adjusts the stderr mirroring threshold at runtime, so
// the CLI can apply "-v" after the handler already exists.
func (h *LogHandler) SetVerbosity(v int) { h.verbosity = v }

// NewHandler returns a handler writing every record to file (if
// non-nil) and mirroring to stderr per verbosity.
func NewHandler(file io.Writer, opts *slog.HandlerOptions, verbosity int) *LogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	sink := file
	if sink == nil {
		sink = io.Discard
	}
	return &LogHandler{
		out: file,
		h: slog.NewTextHandler(sink, &slog.HandlerOptions{
			Level:       opts.Level,
			AddSource:   opts.AddSource,
			ReplaceAttr: nil,
		}),
		mu:        &sync.Mutex{},
		verbosity: verbosity,
	}
}
