// Package consensus computes the majority-vote personality code of a set of
// selected idols.
//
// Each of the four axes is an independent vote. The winning letter at an axis
// is the one with the most votes; on a tie the letter first encountered in
// selection order wins. Shares are percentages of the whole selection, so
// idols without a known code lower every share without voting.
package consensus

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/kingrea/idolmbti/internal/catalog"
)

// SampleSize is the most matching idols returned with a result.
const SampleSize = 20

var (
	// ErrEmptySelection is returned when there is nothing to vote on.
	ErrEmptySelection = errors.New("consensus: selection is empty")
	// ErrNoKnownTypes is returned when no selected idol has a usable code.
	ErrNoKnownTypes = errors.New("consensus: no selected idol has a known personality type")
)

// LetterCount is one letter's votes at an axis.
type LetterCount struct {
	Letter string
	Count  int
}

// AxisTally is the vote table of one axis, in first-encounter order.
type AxisTally struct {
	Counts []LetterCount
	Winner string
}

// Count returns the votes recorded for letter.
func (t AxisTally) Count(letter string) int {
	for _, lc := range t.Counts {
		if lc.Letter == letter {
			return lc.Count
		}
	}
	return 0
}

// Result is the outcome of one computation. It is never updated in place.
type Result struct {
	Code         string
	Axes         [catalog.CodeLength]AxisTally
	WinningShare map[string]int
	OtherShare   map[string]int
	Sample       []*catalog.IdolRecord
	// Total is the selection size used as the share denominator.
	Total int
	// Counted is how many selected idols had a usable code.
	Counted int
	// Matches is how many catalog records share Code.
	Matches int
}

// FormatShare renders a percentage the way the result panel shows it.
func FormatShare(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// Engine carries the random source used for sampling.
type Engine struct {
	rng        *rand.Rand
	SampleSize int
}

// NewEngine returns an engine sampling with rng. A nil rng is seeded from the clock.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng, SampleSize: SampleSize}
}

// NewSeededEngine returns an engine whose samples are reproducible for a
// given seed. A zero seed falls back to the clock.
func NewSeededEngine(seed int64) *Engine {
	if seed == 0 {
		return NewEngine(nil)
	}
	return NewEngine(rand.New(rand.NewSource(seed)))
}

// Compute is a one-shot helper around Engine.Compute.
func Compute(members []*catalog.IdolRecord, cat *catalog.Catalog, rng *rand.Rand) (*Result, error) {
	return NewEngine(rng).Compute(members, cat)
}

// Compute runs the vote over members and samples matching idols from cat.
func (e *Engine) Compute(members []*catalog.IdolRecord, cat *catalog.Catalog) (*Result, error) {
	total := len(members)
	if total == 0 {
		return nil, ErrEmptySelection
	}

	var axes [catalog.CodeLength]AxisTally
	counted := 0
	for _, m := range members {
		if !m.Valid() {
			continue
		}
		counted++
		for i, r := range []rune(m.Personality) {
			axes[i].add(string(r))
		}
	}
	if counted == 0 {
		return nil, ErrNoKnownTypes
	}

	var code strings.Builder
	winning := make(map[string]int, catalog.CodeLength)
	other := make(map[string]int)
	for i := range axes {
		axes[i].Winner = axes[i].pickWinner()
		code.WriteString(axes[i].Winner)
		for _, lc := range axes[i].Counts {
			share := percent(lc.Count, total)
			if lc.Letter == axes[i].Winner {
				winning[lc.Letter] = share
				continue
			}
			other[lc.Letter] = share
		}
	}

	res := &Result{
		Code:         code.String(),
		Axes:         axes,
		WinningShare: winning,
		OtherShare:   other,
		Total:        total,
		Counted:      counted,
	}
	matching := cat.WithCode(res.Code)
	res.Matches = len(matching)
	res.Sample = e.sample(matching)
	return res, nil
}

// sample draws min(SampleSize, len(pool)) records uniformly without
// replacement using a partial Fisher-Yates shuffle over a copy of pool.
func (e *Engine) sample(pool []*catalog.IdolRecord) []*catalog.IdolRecord {
	size := e.SampleSize
	if size <= 0 {
		size = SampleSize
	}
	if size > len(pool) {
		size = len(pool)
	}
	if size == 0 {
		return nil
	}
	work := make([]*catalog.IdolRecord, len(pool))
	copy(work, pool)
	for i := 0; i < size; i++ {
		j := i + e.rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:size]
}

func (t *AxisTally) add(letter string) {
	for i := range t.Counts {
		if t.Counts[i].Letter == letter {
			t.Counts[i].Count++
			return
		}
	}
	t.Counts = append(t.Counts, LetterCount{Letter: letter, Count: 1})
}

// pickWinner keeps the earliest letter unless a later one has strictly more votes.
func (t *AxisTally) pickWinner() string {
	best := LetterCount{}
	for _, lc := range t.Counts {
		if best.Letter == "" || lc.Count > best.Count {
			best = lc
		}
	}
	return best.Letter
}

func percent(count, total int) int {
	return int(math.Round(100 * float64(count) / float64(total)))
}
