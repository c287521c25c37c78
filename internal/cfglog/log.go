// Package cfglog implements the logging sink the configuration engine warns
// through (expose: warn(msg)). The engine never writes to stdout/stderr
// directly; every warning path in internal/merge and internal/parseopt goes
// through a Warner.
package cfglog

import (
	golog "git.sr.ht/~spc/go-log"
	"github.com/google/uuid"
)

// Warner is the sink the engine's merger/importer warn-and-skip paths write
// to. A test double can capture messages instead of routing them through a
// real logger.
type Warner interface {
	Warn(msg string)
}

// Run wraps a Warner with a stable correlation id for a single Parse() call,
// so warnings from concurrently-running parse passes (e.g. the local/remote
// protocol processes the real tool spawns) can be told apart in aggregated
// logs. This is purely a diagnostic addition; it has no bearing on parse
// semantics.
type Run struct {
	id   string
	sink Warner
}

// NewRun starts a new correlation scope backed by the given Warner. Passing
// a nil Warner yields a Run whose Warn calls are silently dropped, useful
// for callers that only want config resolution without logging side effects.
func NewRun(sink Warner) *Run {
	return &Run{id: uuid.NewString(), sink: sink}
}

// Warn emits msg tagged with this run's correlation id.
func (r *Run) Warn(msg string) {
	if r == nil || r.sink == nil {
		return
	}
	r.sink.Warn("[" + r.id + "] " + msg)
}

// ID reports the correlation id for this run, primarily for tests.
func (r *Run) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// GoLog is the default Warner, backed by git.sr.ht/~spc/go-log at warning
// level.
type GoLog struct{}

// Warn logs msg at warning level via git.sr.ht/~spc/go-log.
func (GoLog) Warn(msg string) {
	golog.Warn(msg)
}

// Discard is a Warner that drops every message; used by engine tests that
// assert on Config values and don't want to depend on global logger state.
type Discard struct{}

// Warn implements Warner by doing nothing.
func (Discard) Warn(string) {}

// Collector is a Warner that records every message it receives, used by
// tests that assert on warning text (e.g. "environment contains invalid
// option").
type Collector struct {
	Messages []string
}

// Warn records msg.
func (c *Collector) Warn(msg string) {
	c.Messages = append(c.Messages, msg)
}
