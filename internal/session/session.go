// Package session wires an engine to the collaborators a front-end needs:
// an output sink for committed text and a dictionary loader for reloads.
package session

import (
	"log/slog"

	"array30/internal/emitter"
	"array30/internal/ime"
	"array30/internal/types"
)

// Loader rebuilds the dictionary from its source files.
type Loader func() (ime.Dictionary, error)

// Session is owned by a single front-end event loop.
type Session struct {
	engine  *ime.Engine
	output  emitter.Output
	tracker emitter.Tracker
	loader  Loader
	logger  *slog.Logger
}

type Option func(*Session)

func WithOutput(out emitter.Output) Option {
	return func(s *Session) { s.output = out }
}

func WithLoader(loader Loader) Option {
	return func(s *Session) { s.loader = loader }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func New(dict ime.Dictionary, opts ...Option) *Session {
	s := &Session{
		engine: ime.NewEngine(dict),
		output: emitter.Discard{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the engine for read-only rendering.
func (s *Session) Engine() *ime.Engine {
	return s.engine
}

// HandleKey forwards r to the engine and pushes newly committed text to the
// output sink. Commit keys report NeedUpdate yet still commit, so every
// non-idle result is synced; the tracker sends each rune once.
func (s *Session) HandleKey(r rune) types.KeyResult {
	result := s.engine.HandleKey(r)
	if result != types.NoChange {
		s.sync()
	}
	return result
}

// SelectCandidate selects a page-relative candidate directly, as a click
// or shortcut would.
func (s *Session) SelectCandidate(index int) bool {
	if !s.engine.SelectCandidate(index) {
		return false
	}
	s.sync()
	return true
}

func (s *Session) NextPage() bool {
	return s.engine.NextPage()
}

func (s *Session) PrevPage() bool {
	return s.engine.PrevPage()
}

func (s *Session) ClearOutput() {
	s.engine.ClearOutput()
	s.tracker.Reset()
}

// Reload rebuilds the dictionary with the loader. On failure the current
// tables stay in use.
func (s *Session) Reload() error {
	if s.loader == nil {
		return nil
	}
	dict, err := s.loader()
	if err != nil {
		s.logger.Warn("dictionary reload failed; keeping current tables", "error", err)
		return err
	}
	s.engine.LoadDictionary(dict)
	s.logger.Info("dictionary reloaded")
	return nil
}

func (s *Session) Close() error {
	return s.output.Close()
}

func (s *Session) sync() {
	if err := s.tracker.Sync(s.output, s.engine.OutputText()); err != nil {
		s.logger.Warn("failed to mirror committed text", "error", err)
	}
}
