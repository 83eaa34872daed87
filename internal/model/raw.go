package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrMissingSpeed is returned when a raw result carries neither speed field.
var ErrMissingSpeed = errors.New("result has no wpm or netWpm")

// RawResult is a result row as exported by older data sources. Some sources
// write net speed, others gross speed.
type RawResult struct {
	ID          string   `json:"id"`
	IdentityKey string   `json:"userId"`
	NetWPM      *float64 `json:"netWpm"`
	WPM         *float64 `json:"wpm"`
	Accuracy    *float64 `json:"accuracy"`
	WordsTyped  int      `json:"wordsTyped"`
	Duration    int      `json:"duration"`
	Lang        string   `json:"language"`
	ExamName    string   `json:"examName"`
	Timestamp   string   `json:"timestamp"`
}

// Normalize converts a raw row into the canonical record. netWpm takes
// precedence over wpm; rows with neither are rejected.
func (r RawResult) Normalize() (TestResultRecord, error) {
	var speed float64
	switch {
	case r.NetWPM != nil:
		speed = *r.NetWPM
	case r.WPM != nil:
		speed = *r.WPM
	default:
		return TestResultRecord{}, ErrMissingSpeed
	}
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return TestResultRecord{}, fmt.Errorf("invalid speed %v", speed)
	}

	acc := 0.0
	if r.Accuracy != nil {
		acc = *r.Accuracy
	}
	if acc < 0 || acc > 100 {
		return TestResultRecord{}, fmt.Errorf("accuracy %v out of range", acc)
	}

	ts := time.Time{}
	if s := strings.TrimSpace(r.Timestamp); s != "" {
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return TestResultRecord{}, fmt.Errorf("invalid timestamp: %w", err)
		}
		ts = parsed
	}

	return TestResultRecord{
		ID:              r.ID,
		IdentityKey:     r.IdentityKey,
		WPM:             int(math.Round(speed)),
		AccuracyPercent: acc,
		WordsTyped:      r.WordsTyped,
		DurationSeconds: r.Duration,
		Lang:            r.Lang,
		ExamName:        r.ExamName,
		Timestamp:       ts,
	}, nil
}
