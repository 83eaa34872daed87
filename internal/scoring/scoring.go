// Package scoring computes accuracy and speed for a typing session.
//
// All functions are pure: the same reference and typed text always produce
// the same result.
package scoring

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ComputeAccuracy compares typed against reference word by word and
// character by character and returns the percentage of matching positions.
// A typed word beyond the end of the reference is compared with an empty
// word, so each of its characters counts as an error.
func ComputeAccuracy(reference, typed string) float64 {
	refWords := strings.Fields(reference)
	typedWords := strings.Fields(typed)
	if len(typedWords) == 0 {
		return 0
	}
	total, correct := 0, 0
	for i, tw := range typedWords {
		tr := []rune(tw)
		var rr []rune
		if i < len(refWords) {
			rr = []rune(refWords[i])
		}
		n := max(len(tr), len(rr))
		for j := 0; j < n; j++ {
			total++
			if j < len(tr) && j < len(rr) && tr[j] == rr[j] {
				correct++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ComputeWpm returns wordsTyped per minute, rounded to the nearest integer.
// It panics when elapsedSeconds is not positive; callers finalize only after
// at least one second has elapsed.
func ComputeWpm(wordsTyped, elapsedSeconds int) int {
	if elapsedSeconds <= 0 {
		panic("scoring: ComputeWpm called with non-positive elapsed time")
	}
	return int(math.Round(float64(wordsTyped) / float64(elapsedSeconds) * 60))
}

// WordsTyped counts whitespace-delimited tokens in typed.
func WordsTyped(typed string) int {
	return len(strings.Fields(typed))
}

// IsCurrentWordCorrectPrefix reports whether the token being typed is a
// prefix of the reference word at wordIndex. The token being typed is the
// last token of typed when typed does not end in whitespace; when it does,
// no token is in progress and the result is true.
func IsCurrentWordCorrectPrefix(reference, typed string, wordIndex int) bool {
	token, inProgress := trailingToken(typed)
	if !inProgress {
		return true
	}
	refWords := strings.Fields(reference)
	if wordIndex < 0 || wordIndex >= len(refWords) {
		return false
	}
	return strings.HasPrefix(refWords[wordIndex], token)
}

// AdvanceWordIndex applies the word-advance rule after a keystroke: the index
// moves forward by one only when that keystroke finished a token (typed ends
// in a single whitespace rune after a non-whitespace rune), the finished
// token equals the reference word at index, and index is not the last word.
// A mismatched token leaves the index where it is.
func AdvanceWordIndex(reference, typed string, index int) int {
	last, size := utf8.DecodeLastRuneInString(typed)
	if size == 0 || !unicode.IsSpace(last) {
		return index
	}
	token, finished := trailingToken(typed[:len(typed)-size])
	if !finished {
		return index
	}
	refWords := strings.Fields(reference)
	if index < 0 || index >= len(refWords)-1 {
		return index
	}
	if token != refWords[index] {
		return index
	}
	return index + 1
}

// trailingToken returns the last whitespace-delimited token of s and true,
// or "" and false when s is empty or ends in whitespace.
func trailingToken(s string) (string, bool) {
	last, size := utf8.DecodeLastRuneInString(s)
	if size == 0 || unicode.IsSpace(last) {
		return "", false
	}
	start := strings.LastIndexFunc(s, unicode.IsSpace)
	if start < 0 {
		return s, true
	}
	_, width := utf8.DecodeRuneInString(s[start:])
	return s[start+width:], true
}

// FormatAccuracy rounds an accuracy percentage to one decimal place.
func FormatAccuracy(accuracy float64) float64 {
	return math.Round(accuracy*10) / 10
}
