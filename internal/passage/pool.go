package passage

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/typecheck/internal/model"
)

// ComposedPoolSize is the number of passages built from a word list.
const ComposedPoolSize = 20

var builtin = []string{
	"the quick brown fox jumps over the lazy dog while the farmer watches from the porch",
	"practice makes progress and steady hands make fewer mistakes than hurried ones",
	"a good typist keeps their eyes on the screen and trusts their fingers to find the keys",
	"every morning the baker opens the shop before sunrise and the street fills with the smell of bread",
	"rivers carve valleys over thousands of years and leave behind stones worn smooth by water",
	"the library was quiet except for the soft turning of pages and the hum of the old heater",
	"clear writing comes from clear thinking so take a moment to plan before you begin",
	"the train left the station on time and rolled past fields of wheat and sleepy villages",
}

// Builtin returns the default passage pool.
func Builtin() []model.Passage {
	out := make([]model.Passage, 0, len(builtin))
	for _, text := range builtin {
		out = append(out, model.NewPassage(text))
	}
	return out
}

// LoadPool reads one passage per non-empty line from path.
func LoadPool(path string) ([]model.Passage, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	pool := make([]model.Passage, 0, len(lines))
	for _, line := range lines {
		pool = append(pool, model.NewPassage(line))
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("passage file is empty")
	}
	return pool, nil
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		words = append(words, strings.Fields(line)...)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
