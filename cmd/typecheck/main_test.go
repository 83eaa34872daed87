package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/verte-zerg/typecheck/internal/config"
	"github.com/verte-zerg/typecheck/internal/model"
	"github.com/verte-zerg/typecheck/internal/passage"
	"github.com/verte-zerg/typecheck/internal/store"
)

func TestDefaultConfigTemplateParses(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.Session.Duration != nil || cfg.Identity.Email != nil {
		t.Fatalf("template values should be commented out")
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  model.Config
		ok   bool
	}{
		{name: "defaults", cfg: model.Config{DurationSeconds: 30}, ok: true},
		{name: "zero duration", cfg: model.Config{DurationSeconds: 0}},
		{name: "wordlist without words", cfg: model.Config{DurationSeconds: 60, WordListPath: "w.txt"}},
		{name: "wordlist", cfg: model.Config{DurationSeconds: 60, WordListPath: "w.txt", PassageWords: 10}, ok: true},
		{name: "both sources", cfg: model.Config{DurationSeconds: 60, PassagesPath: "p.txt", WordListPath: "w.txt", PassageWords: 10}},
	}
	for _, tc := range cases {
		err := validateConfig(tc.cfg)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadPassagePoolSources(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	pool, err := loadPassagePool(model.Config{}, rnd)
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if len(pool) != len(passage.Builtin()) {
		t.Fatalf("expected builtin pool, got %d passages", len(pool))
	}

	dir := t.TempDir()
	passages := filepath.Join(dir, "passages.txt")
	if err := os.WriteFile(passages, []byte("one two\n\nthree four\n"), 0o644); err != nil {
		t.Fatalf("write passages: %v", err)
	}
	pool, err = loadPassagePool(model.Config{PassagesPath: passages}, rnd)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(pool))
	}

	words := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(words, []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	pool, err = loadPassagePool(model.Config{WordListPath: words, PassageWords: 4}, rnd)
	if err != nil {
		t.Fatalf("wordlist: %v", err)
	}
	if len(pool) != passage.ComposedPoolSize {
		t.Fatalf("expected %d composed passages, got %d", passage.ComposedPoolSize, len(pool))
	}
	for _, p := range pool {
		if p.Len() != 4 {
			t.Fatalf("expected 4 words per passage, got %d", p.Len())
		}
	}

	if _, err := loadPassagePool(model.Config{PassagesPath: filepath.Join(dir, "missing")}, rnd); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

type recordingInserter struct {
	records []model.TestResultRecord
	failID  string
}

func (r *recordingInserter) InsertResult(_ context.Context, rec model.TestResultRecord) error {
	if rec.ID != "" && rec.ID == r.failID {
		return errors.New("constraint failed")
	}
	r.records = append(r.records, rec)
	return nil
}

func TestImportResultsNormalizesAndSkips(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a","netWpm":41.6,"wpm":55,"accuracy":93.5,"timestamp":"2025-03-01T10:00:00Z"}`,
		`{"id":"b","wpm":60,"accuracy":99}`,
		`{"id":"c","accuracy":99}`,
		`not json`,
		``,
		`{"id":"d","wpm":70}`,
	}, "\n")
	ins := &recordingInserter{failID: "d"}

	imported, skipped, err := importResults(context.Background(), strings.NewReader(input), ins, zap.NewNop())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 2 || skipped != 3 {
		t.Fatalf("expected 2 imported and 3 skipped, got %d and %d", imported, skipped)
	}
	if ins.records[0].WPM != 42 {
		t.Fatalf("expected netWpm to win, got %d", ins.records[0].WPM)
	}
	if ins.records[1].WPM != 60 {
		t.Fatalf("expected wpm fallback, got %d", ins.records[1].WPM)
	}
}

func TestLookupErrorNotFound(t *testing.T) {
	err := lookupError(" CERT-1-2 ", store.ErrNotFound)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "certificate CERT-1-2 not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = lookupError("CERT-1-2", errors.New("disk I/O error"))
	if errors.Is(err, store.ErrNotFound) || !strings.HasPrefix(err.Error(), "failed to look up certificate") {
		t.Fatalf("unexpected error %v", err)
	}
}
