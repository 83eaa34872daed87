package passage

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/typecheck/internal/model"
)

func TestSelectNeverRepeatsPrevious(t *testing.T) {
	pool := []model.Passage{
		model.NewPassage("one two"),
		model.NewPassage("three four"),
		model.NewPassage("five six"),
	}
	for seed := int64(0); seed < 200; seed++ {
		src := NewSourceWithRand(pool, rand.New(rand.NewSource(seed)))
		prev := src.Select(nil)
		for i := 0; i < 20; i++ {
			next := src.Select(&prev)
			if next.Equal(prev) {
				t.Fatalf("seed %d: passage repeated: %q", seed, next.Text())
			}
			prev = next
		}
	}
}

func TestSelectSinglePoolReturnsSole(t *testing.T) {
	only := model.NewPassage("only passage")
	src := NewSourceWithRand([]model.Passage{only}, rand.New(rand.NewSource(1)))
	for i := 0; i < 5; i++ {
		got := src.Select(&only)
		if !got.Equal(only) {
			t.Fatalf("expected sole passage, got %q", got.Text())
		}
	}
}

func TestSelectDuplicatePoolCollapses(t *testing.T) {
	p := model.NewPassage("same text")
	src := NewSourceWithRand([]model.Passage{p, model.NewPassage("same  text"), {}}, rand.New(rand.NewSource(1)))
	if src.Len() != 1 {
		t.Fatalf("expected duplicates and empties dropped, got %d", src.Len())
	}
	if got := src.Select(&p); !got.Equal(p) {
		t.Fatalf("unexpected passage %q", got.Text())
	}
}

func TestSelectEmptyPoolPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on empty pool")
		}
	}()
	NewSourceWithRand(nil, rand.New(rand.NewSource(1))).Select(nil)
}

func TestSelectDeterministicForSeed(t *testing.T) {
	pool := Builtin()
	a := NewSourceWithRand(pool, rand.New(rand.NewSource(42)))
	b := NewSourceWithRand(pool, rand.New(rand.NewSource(42)))
	for i := 0; i < 10; i++ {
		if !a.Select(nil).Equal(b.Select(nil)) {
			t.Fatalf("expected identical draws for the same seed")
		}
	}
}

func TestLoadPoolAndWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passages.txt")
	if err := os.WriteFile(path, []byte("first passage here\n\n  second one \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	pool, err := LoadPool(path)
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
	if len(pool) != 2 || pool[1].Text() != "second one" {
		t.Fatalf("unexpected pool: %+v", pool)
	}

	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if len(words) != 5 {
		t.Fatalf("expected 5 words, got %d", len(words))
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPool(empty); err == nil {
		t.Fatalf("expected error for empty passage file")
	}
}

func TestCompose(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	out := Compose(rnd, []string{"alpha", "beta", "gamma"}, 4, 6)
	if len(out) != 4 {
		t.Fatalf("expected 4 passages, got %d", len(out))
	}
	for _, p := range out {
		if p.Len() != 6 {
			t.Fatalf("expected 6 words, got %d", p.Len())
		}
	}
	if Compose(rnd, nil, 4, 6) != nil {
		t.Fatalf("expected nil for empty word list")
	}
}
