// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Config defines typing test settings.
type Config struct {
	Lang            string
	DurationSeconds int
	ExamName        string
	PassagesPath    string
	WordListPath    string
	PassageWords    int
}

// Passage is the reference text a user must reproduce during a session.
type Passage struct {
	words []string
}

// NewPassage splits text on whitespace into a passage.
func NewPassage(text string) Passage {
	return Passage{words: strings.Fields(text)}
}

// Words returns a copy of the passage words.
func (p Passage) Words() []string {
	out := make([]string, len(p.words))
	copy(out, p.words)
	return out
}

// Len returns the number of words in the passage.
func (p Passage) Len() int {
	return len(p.words)
}

// Word returns the word at index i, or "" when out of range.
func (p Passage) Word(i int) string {
	if i < 0 || i >= len(p.words) {
		return ""
	}
	return p.words[i]
}

// Text joins the passage words with single spaces.
func (p Passage) Text() string {
	return strings.Join(p.words, " ")
}

// Equal reports whether both passages hold the same words.
func (p Passage) Equal(other Passage) bool {
	if len(p.words) != len(other.words) {
		return false
	}
	for i := range p.words {
		if p.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the passage has no words.
func (p Passage) IsZero() bool {
	return len(p.words) == 0
}

// Phase is the lifecycle phase of a typing session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CertificateStatus tracks certificate issuance for one completed session.
type CertificateStatus int

const (
	CertificateNone CertificateStatus = iota
	CertificatePending
	CertificateIssued
)

// ScoreResult is the frozen outcome of a completed session.
type ScoreResult struct {
	WordsTyped      int
	AccuracyPercent float64
	WPM             int
	ElapsedSeconds  int
}

// Identity is the authenticated user as seen by the session.
type Identity struct {
	Key         string
	Email       string
	DisplayName string
}

// ResultMeta carries context stored alongside a score.
type ResultMeta struct {
	Lang            string
	ExamName        string
	DurationSeconds int
	CompletedAt     time.Time
}

// TestResultRecord is a persisted score.
type TestResultRecord struct {
	ID              string
	IdentityKey     string
	WPM             int
	AccuracyPercent float64
	WordsTyped      int
	DurationSeconds int
	Lang            string
	ExamName        string
	Timestamp       time.Time
}

// CertificateRecord is a persisted certificate.
type CertificateRecord struct {
	Number          string
	UserEmail       string
	WPM             int
	AccuracyPercent float64
	Date            time.Time
}

// ResultFilter narrows stored results for listing and stats.
type ResultFilter struct {
	IdentityKey string
	Lang        string
	Since       *time.Time
	Last        int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Filter      ResultFilter
	CurveWindow int
}
