package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typecheck/internal/model"
)

func sampleResults() []model.TestResultRecord {
	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	return []model.TestResultRecord{
		{WPM: 30, AccuracyPercent: 90, WordsTyped: 15, DurationSeconds: 30, Lang: "en", Timestamp: base},
		{WPM: 50, AccuracyPercent: 100, WordsTyped: 50, DurationSeconds: 60, Lang: "en", ExamName: "ssc", Timestamp: base.Add(time.Hour)},
		{WPM: 40, AccuracyPercent: 95, WordsTyped: 200, DurationSeconds: 300, Lang: "en", Timestamp: base.Add(2 * time.Hour)},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	if s.Tests != 3 || s.BestWPM != 50 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.AvgWPM != 40 || s.AvgAccuracy != 95 {
		t.Fatalf("unexpected averages: %+v", s)
	}
	if s.TotalWords != 265 || s.TotalTime != 390 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if (Summarize(nil) != Summary{}) {
		t.Fatalf("expected zero summary for no results")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestRenderSummaryAndTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sampleResults()); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if err := RenderCurves(&buf, sampleResults(), 2, 80); err != nil {
		t.Fatalf("RenderCurves: %v", err)
	}
	if err := RenderResultsTable(&buf, sampleResults()); err != nil {
		t.Fatalf("RenderResultsTable: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Tests: 3", "Best WPM: 50", "Avg Accuracy: 95.0%", "Time typing: 6m30s", "WPM      ", "ssc", "5m"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("output missing %q:\n%s", needle, out)
		}
	}
}

func TestRenderCurvesTruncatesToWidth(t *testing.T) {
	results := make([]model.TestResultRecord, 100)
	for i := range results {
		results[i].WPM = i
	}
	var buf bytes.Buffer
	if err := RenderCurves(&buf, results, 1, 40); err != nil {
		t.Fatalf("RenderCurves: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		if len(line) > 40 {
			t.Fatalf("line wider than 40: %q", line)
		}
	}
}

func TestRenderCertificate(t *testing.T) {
	var buf bytes.Buffer
	rec := model.CertificateRecord{Number: "CERT-1-2", UserEmail: "a@b.c", WPM: 70, AccuracyPercent: 98.25, Date: time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)}
	if err := RenderCertificate(&buf, rec); err != nil {
		t.Fatalf("RenderCertificate: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"CERT-1-2", "a@b.c", "70 WPM", "98.2%", "2025-05-06"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("output missing %q:\n%s", needle, out)
		}
	}
}
