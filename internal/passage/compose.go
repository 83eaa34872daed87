package passage

import (
	"math/rand"
	"strings"

	"github.com/verte-zerg/typecheck/internal/model"
)

// Compose builds count passages of wordsPer words drawn uniformly from words.
func Compose(rnd *rand.Rand, words []string, count, wordsPer int) []model.Passage {
	if len(words) == 0 || count <= 0 || wordsPer <= 0 {
		return nil
	}
	out := make([]model.Passage, 0, count)
	for i := 0; i < count; i++ {
		picked := make([]string, 0, wordsPer)
		for j := 0; j < wordsPer; j++ {
			picked = append(picked, words[rnd.Intn(len(words))])
		}
		out = append(out, model.NewPassage(strings.Join(picked, " ")))
	}
	return out
}
