// Package stats contains dashboard calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typecheck/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of stored results.
type Summary struct {
	Tests       int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TotalWords  int
	TotalTime   int
}

// Summarize computes dashboard totals for results.
func Summarize(results []model.TestResultRecord) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}
	var wpmSum, accSum float64
	for _, r := range results {
		wpmSum += float64(r.WPM)
		accSum += r.AccuracyPercent
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
		s.TotalWords += r.WordsTyped
		s.TotalTime += r.DurationSeconds
	}
	s.Tests = len(results)
	s.AvgWPM = wpmSum / float64(len(results))
	s.AvgAccuracy = accSum / float64(len(results))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints dashboard totals.
func RenderSummary(w io.Writer, results []model.TestResultRecord) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Tests),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Words typed: %d", s.TotalWords),
		fmt.Sprintf("Time typing: %s", formatSeconds(s.TotalTime)),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints WPM and accuracy trends as sparklines no wider than
// width columns. A width of zero disables truncation.
func RenderCurves(w io.Writer, results []model.TestResultRecord, window, width int) error {
	if len(results) == 0 {
		return nil
	}
	wpms := make([]float64, len(results))
	accs := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = float64(r.WPM)
		accs[i] = r.AccuracyPercent
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	const labelWidth = len("Accuracy ")
	if width > labelWidth && len(wpms) > width-labelWidth {
		keep := width - labelWidth
		wpms = wpms[len(wpms)-keep:]
		accs = accs[len(accs)-keep:]
	}
	lines := []string{
		fmt.Sprintf("Trend (moving average, window %d)", max(window, 1)),
		"WPM      " + Sparkline(wpms),
		"Accuracy " + Sparkline(accs),
		"",
	}
	return writeLines(w, lines)
}

// RenderResultsTable prints one row per result, newest last.
func RenderResultsTable(w io.Writer, results []model.TestResultRecord) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	tbl := newTable("Date", "WPM", "Accuracy", "Words", "Time", "Lang", "Exam").alignRight(1, 2, 3, 4)
	for _, r := range results {
		exam := r.ExamName
		if exam == "" {
			exam = "-"
		}
		tbl.add(
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%.1f%%", r.AccuracyPercent),
			fmt.Sprintf("%d", r.WordsTyped),
			formatSeconds(r.DurationSeconds),
			r.Lang,
			exam,
		)
	}
	return tbl.render(w)
}

// RenderCertificate prints a certificate record.
func RenderCertificate(w io.Writer, rec model.CertificateRecord) error {
	tbl := newTable()
	tbl.add("Certificate", rec.Number)
	tbl.add("Issued to", rec.UserEmail)
	tbl.add("Speed", fmt.Sprintf("%d WPM", rec.WPM))
	tbl.add("Accuracy", fmt.Sprintf("%.1f%%", rec.AccuracyPercent))
	tbl.add("Date", rec.Date.UTC().Format("2006-01-02"))
	return tbl.render(w)
}

func formatSeconds(total int) string {
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	if total%60 == 0 {
		return fmt.Sprintf("%dm", total/60)
	}
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}
