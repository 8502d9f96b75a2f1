package randsel

import (
	"math/rand"
	"time"
)

// Source produces the random picks that drive the activity cycle. Selections
// are reproducible when built from a fixed seed.
type Source struct {
	rng *rand.Rand
}

// New returns a Source seeded with seed. Seed 0 seeds from the clock.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns a uniformly random element of items after filtering out every
// occurrence of exclude. ok is false when nothing remains to pick from.
func (s *Source) Pick(items []string, exclude string) (string, bool) {
	candidates := make([]string, 0, len(items))
	for _, it := range items {
		if it == exclude {
			continue
		}
		candidates = append(candidates, it)
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

// PickRange returns a random windowSize-line window within a document of
// totalLines lines, as an inclusive [start, end] pair. A window larger than
// the document clamps to the last line; a document with no lines yields the
// degenerate [0, 0] range.
func (s *Source) PickRange(totalLines, windowSize int) (start, end int) {
	if totalLines <= 0 {
		return 0, 0
	}
	if windowSize < 1 {
		windowSize = 1
	}
	maxStart := totalLines - windowSize
	if maxStart < 0 {
		maxStart = 0
	}
	start = s.rng.Intn(maxStart + 1)
	end = start + windowSize - 1
	if end > totalLines-1 {
		end = totalLines - 1
	}
	return start, end
}
