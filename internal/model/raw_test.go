package model

import (
	"errors"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestNormalizePrefersNetWPM(t *testing.T) {
	rec, err := RawResult{NetWPM: f64(41.6), WPM: f64(55), Accuracy: f64(93.5)}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.WPM != 42 {
		t.Fatalf("expected net wpm 42, got %d", rec.WPM)
	}
	if rec.AccuracyPercent != 93.5 {
		t.Fatalf("unexpected accuracy %v", rec.AccuracyPercent)
	}
}

func TestNormalizeFallsBackToWPM(t *testing.T) {
	rec, err := RawResult{WPM: f64(60), Timestamp: "2025-03-01T10:00:00Z"}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.WPM != 60 {
		t.Fatalf("expected wpm 60, got %d", rec.WPM)
	}
	if rec.Timestamp.IsZero() {
		t.Fatalf("expected parsed timestamp")
	}
}

func TestNormalizeRejectsMissingSpeed(t *testing.T) {
	_, err := RawResult{Accuracy: f64(99)}.Normalize()
	if !errors.Is(err, ErrMissingSpeed) {
		t.Fatalf("expected ErrMissingSpeed, got %v", err)
	}
}

func TestNormalizeRejectsBadAccuracy(t *testing.T) {
	if _, err := (RawResult{WPM: f64(10), Accuracy: f64(120)}).Normalize(); err == nil {
		t.Fatalf("expected accuracy error")
	}
}

func TestPassageWordsAndEqual(t *testing.T) {
	p := NewPassage("  the quick\tbrown  fox ")
	if p.Len() != 4 {
		t.Fatalf("expected 4 words, got %d", p.Len())
	}
	if p.Text() != "the quick brown fox" {
		t.Fatalf("unexpected text %q", p.Text())
	}
	if !p.Equal(NewPassage("the quick brown fox")) {
		t.Fatalf("expected passages to be equal")
	}
	if p.Word(9) != "" {
		t.Fatalf("expected empty word out of range")
	}
	words := p.Words()
	words[0] = "changed"
	if p.Word(0) != "the" {
		t.Fatalf("passage must not be mutated through Words")
	}
}
