// Package passage supplies reference passages for typing sessions.
package passage

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/typecheck/internal/model"
)

// Source draws passages from a fixed pool.
type Source struct {
	rnd  *rand.Rand
	pool []model.Passage
}

// NewSource returns a Source seeded with the current time.
func NewSource(pool []model.Passage) *Source {
	return NewSourceWithRand(pool, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSourceWithRand returns a Source drawing from rnd. Duplicate and empty
// passages are dropped so that the non-repeat draw always terminates.
func NewSourceWithRand(pool []model.Passage, rnd *rand.Rand) *Source {
	unique := make([]model.Passage, 0, len(pool))
	for _, p := range pool {
		if p.IsZero() {
			continue
		}
		dup := false
		for _, seen := range unique {
			if seen.Equal(p) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, p)
		}
	}
	return &Source{rnd: rnd, pool: unique}
}

// Len returns the number of distinct passages in the pool.
func (s *Source) Len() int {
	return len(s.pool)
}

// Pool returns the distinct passages in pool order.
func (s *Source) Pool() []model.Passage {
	out := make([]model.Passage, len(s.pool))
	copy(out, s.pool)
	return out
}

// Select picks a passage uniformly at random. With more than one passage in
// the pool the result never equals previous. It panics on an empty pool.
func (s *Source) Select(previous *model.Passage) model.Passage {
	if len(s.pool) == 0 {
		panic("passage: Select called with an empty pool")
	}
	if len(s.pool) == 1 {
		return s.pool[0]
	}
	for {
		p := s.pool[s.rnd.Intn(len(s.pool))]
		if previous == nil || !p.Equal(*previous) {
			return p
		}
	}
}
