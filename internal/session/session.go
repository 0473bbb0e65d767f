// Package session holds the currently loaded statistics for the
// presentation layer. The value is caller-owned; there is no
// process-wide state.
package session

import (
	"context"

	"github.com/verte-zerg/kostats/internal/koreader"
	"github.com/verte-zerg/kostats/internal/model"
)

// Session tracks the result of the most recent load. A new load fully
// replaces the previous one; on failure the stats fall back to the
// empty sentinel so consumers never see a partial model.
type Session struct {
	stats  model.OverallStats
	diag   koreader.Diagnostics
	loaded bool
	source string
}

// New returns an empty session with nothing loaded.
func New() *Session {
	return &Session{stats: model.Empty()}
}

// Load parses a database buffer and replaces the current statistics.
// The error, if any, is returned after the session has been reset.
func (s *Session) Load(ctx context.Context, name string, data []byte) error {
	stats, diag, err := koreader.Parse(ctx, data)
	if err != nil {
		s.Reset()
		s.diag = diag
		return err
	}
	s.stats = stats
	s.diag = diag
	s.loaded = true
	s.source = name
	return nil
}

// LoadFile parses a database file and replaces the current statistics.
func (s *Session) LoadFile(ctx context.Context, path string) error {
	stats, diag, err := koreader.ParseFile(ctx, path)
	if err != nil {
		s.Reset()
		s.diag = diag
		return err
	}
	s.stats = stats
	s.diag = diag
	s.loaded = true
	s.source = path
	return nil
}

// Stats returns the current statistics, or the empty sentinel when
// nothing is loaded.
func (s *Session) Stats() model.OverallStats {
	return s.stats
}

// Diagnostics returns the diagnostics of the most recent load attempt.
func (s *Session) Diagnostics() koreader.Diagnostics {
	return s.diag
}

// Loaded reports whether a file has been loaded successfully.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Source returns the name or path of the loaded file.
func (s *Session) Source() string {
	return s.source
}

// Reset discards the current statistics.
func (s *Session) Reset() {
	s.stats = model.Empty()
	s.diag = koreader.Diagnostics{}
	s.loaded = false
	s.source = ""
}
