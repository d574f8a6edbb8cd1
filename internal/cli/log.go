// Package cli implements the shortword command-line interface.
//
// The commands find a base for a puzzle definition, build and resume
// short-word tables, and factorize targets exactly or up to a coloring.
// Tables, bases and solutions are cached in a directory or in Redis; the
// serve command exposes the same operations over HTTP.
//
// # Commands
//
// The main commands are:
//   - base: Find a base and the group order
//   - build: Build or grow the table for a definition
//   - solve: Factorize one target or a batch file
//   - check: Verify a stored table against its generators
//   - explore: Enumerate group elements through the explorers
//   - graph: Render the Cayley ball or an orbit graph
//   - serve: Answer factorization requests over HTTP
//   - cache: Manage the table cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context; the HTTP server attaches a request-scoped
// logger carrying the request ID.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short
// timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, rounded
// to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx. Commands get the root logger; the HTTP
// server replaces it per request with one carrying request_id.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
