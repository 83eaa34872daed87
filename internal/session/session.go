// Package session implements the typing test lifecycle.
//
// A Session moves Idle -> Active -> Completed and back to Idle on Reset.
// It is not safe for concurrent use; all transitions happen on the caller's
// event loop.
package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/verte-zerg/typecheck/internal/clock"
	"github.com/verte-zerg/typecheck/internal/model"
	"github.com/verte-zerg/typecheck/internal/scoring"
)

var (
	// ErrNotActive is returned when an operation needs a running test.
	ErrNotActive = errors.New("session is not active")
	// ErrAlreadyCompleted is returned when finalizing a completed session.
	ErrAlreadyCompleted = errors.New("session already completed")
)

// PassageSource draws reference passages.
type PassageSource interface {
	Select(previous *model.Passage) model.Passage
}

// IdentityProvider returns the authenticated user, or nil.
type IdentityProvider interface {
	CurrentIdentity() *model.Identity
}

// Options configures a Session.
type Options struct {
	DurationSeconds int
	Identity        IdentityProvider
	Logger          *zap.Logger
}

// Session is one typing test from passage selection to completion or reset.
type Session struct {
	source   PassageSource
	identity IdentityProvider
	logger   *zap.Logger
	duration int

	phase      model.Phase
	generation uint64
	passage    model.Passage
	typed      []rune
	wordIndex  int
	clock      clock.Countdown
	endPending bool

	result      model.ScoreResult
	hasResult   bool
	certificate model.CertificateStatus

	completed   map[string]struct{}
	completedBy string
}

// New draws the first passage and returns an idle session.
func New(source PassageSource, opts Options) *Session {
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = clock.DefaultDurationSeconds
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Session{
		source:    source,
		identity:  opts.Identity,
		logger:    opts.Logger,
		duration:  opts.DurationSeconds,
		completed: map[string]struct{}{},
	}
	s.passage = source.Select(nil)
	return s
}

// Start moves an idle session to Active and starts the clock. It is a no-op
// on an active session.
func (s *Session) Start() error {
	switch s.phase {
	case model.PhaseActive:
		return nil
	case model.PhaseCompleted:
		return ErrAlreadyCompleted
	}
	s.phase = model.PhaseActive
	s.clock.Start(s.duration)
	s.logger.Debug("session started",
		zap.Uint64("generation", s.generation),
		zap.Int("duration_seconds", s.duration))
	return nil
}

// Type appends r to the typed input, starting the session if idle. It
// reports whether the keystroke was accepted.
func (s *Session) Type(r rune) bool {
	if s.phase == model.PhaseIdle {
		if err := s.Start(); err != nil {
			return false
		}
	}
	if s.phase != model.PhaseActive {
		return false
	}
	s.typed = append(s.typed, r)
	s.wordIndex = scoring.AdvanceWordIndex(s.passage.Text(), string(s.typed), s.wordIndex)
	return true
}

// Erase handles a backspace or delete keystroke. Input is append-only, so
// the keystroke is always dropped.
func (s *Session) Erase() bool {
	return false
}

// Tick advances the clock by one second. It reports whether the session
// completed on this tick.
func (s *Session) Tick() bool {
	if s.phase != model.PhaseActive {
		return false
	}
	expired := s.clock.Tick()
	if expired {
		s.finalize(s.clock.Duration())
		return true
	}
	if s.endPending && s.clock.Elapsed() >= 1 {
		s.finalize(s.clock.Elapsed())
		return true
	}
	return false
}

// End finishes an active session early. When no full second has elapsed yet
// the end is deferred to the next tick and End reports false.
func (s *Session) End() (bool, error) {
	switch s.phase {
	case model.PhaseCompleted:
		return false, ErrAlreadyCompleted
	case model.PhaseIdle:
		return false, ErrNotActive
	}
	if s.clock.Elapsed() < 1 {
		s.endPending = true
		return false, nil
	}
	s.finalize(s.clock.Elapsed())
	return true, nil
}

func (s *Session) finalize(elapsed int) {
	s.clock.Cancel()
	s.endPending = false
	s.phase = model.PhaseCompleted

	ref := s.passage.Text()
	typed := string(s.typed)
	words := scoring.WordsTyped(typed)
	s.result = model.ScoreResult{
		WordsTyped:      words,
		AccuracyPercent: scoring.ComputeAccuracy(ref, typed),
		WPM:             scoring.ComputeWpm(words, elapsed),
		ElapsedSeconds:  elapsed,
	}
	s.hasResult = true

	if s.identity != nil {
		if id := s.identity.CurrentIdentity(); id != nil && id.Key != "" {
			s.completed[id.Key] = struct{}{}
			s.completedBy = id.Key
		}
	}
	s.logger.Info("session completed",
		zap.Uint64("generation", s.generation),
		zap.Int("wpm", s.result.WPM),
		zap.Float64("accuracy", s.result.AccuracyPercent),
		zap.Int("words", s.result.WordsTyped),
		zap.Int("elapsed_seconds", elapsed))
}

// Reset discards the current attempt and returns to Idle with a new
// passage. An active attempt is cancelled without producing a result.
func (s *Session) Reset() {
	if s.phase == model.PhaseActive {
		s.logger.Debug("active session discarded", zap.Uint64("generation", s.generation))
	}
	s.clock.Cancel()
	s.clock = clock.Countdown{}
	s.endPending = false
	s.typed = nil
	s.wordIndex = 0
	s.result = model.ScoreResult{}
	s.hasResult = false
	s.certificate = model.CertificateNone
	if s.completedBy != "" {
		delete(s.completed, s.completedBy)
		s.completedBy = ""
	}
	prev := s.passage
	s.passage = s.source.Select(&prev)
	s.phase = model.PhaseIdle
	s.generation++
}

// Result returns the frozen score of a completed session.
func (s *Session) Result() (model.ScoreResult, bool) {
	return s.result, s.hasResult
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() model.Phase {
	return s.phase
}

// Generation identifies the current attempt; it changes on every Reset.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Passage returns the reference passage.
func (s *Session) Passage() model.Passage {
	return s.passage
}

// Typed returns the text entered so far.
func (s *Session) Typed() string {
	return string(s.typed)
}

// WordIndex returns the index of the word being typed.
func (s *Session) WordIndex() int {
	return s.wordIndex
}

// CurrentWordCorrect reports whether the word in progress is on track.
func (s *Session) CurrentWordCorrect() bool {
	return scoring.IsCurrentWordCorrectPrefix(s.passage.Text(), string(s.typed), s.wordIndex)
}

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int {
	if s.phase == model.PhaseIdle {
		return s.duration
	}
	return s.clock.Remaining()
}

// DurationSeconds returns the configured session length.
func (s *Session) DurationSeconds() int {
	return s.duration
}

// EndPending reports whether an early end waits for the first tick.
func (s *Session) EndPending() bool {
	return s.endPending
}

// HasCompleted reports whether the identity finished a test in this session.
func (s *Session) HasCompleted(key string) bool {
	_, ok := s.completed[key]
	return ok
}

// CertificateStatus returns the issuance state for the current attempt.
func (s *Session) CertificateStatus() model.CertificateStatus {
	return s.certificate
}

// CertificateIssued reports whether a certificate exists for this attempt.
func (s *Session) CertificateIssued() bool {
	return s.certificate == model.CertificateIssued
}

// SetCertificateStatus records issuance progress for attempt generation. It
// reports false and changes nothing when generation is stale or the session
// is not completed.
func (s *Session) SetCertificateStatus(generation uint64, status model.CertificateStatus) bool {
	if generation != s.generation || s.phase != model.PhaseCompleted {
		return false
	}
	s.certificate = status
	return true
}
