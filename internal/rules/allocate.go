package rules

import (
	"math/rand/v2"
	"sync"

	"github.com/starford/deckwright/internal/models"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// globalShuffler uses the goroutine-safe top-level source.
type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

type lockedShuffler struct {
	mu sync.Mutex
	s  Shuffler
}

func (l *lockedShuffler) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Shuffle(n, swap)
}

// SeededShuffler returns a private deterministic source for one build.
func SeededShuffler(seed uint64) Shuffler {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// filterPool keeps cards legal under the commander identity and not banned.
func (e *Engine) filterPool(ci models.ColorIdentity) []models.OracleCard {
	out := make([]models.OracleCard, 0, len(e.cards))
	for _, c := range e.cards {
		if c.MatchesColorIdentity(ci) && !e.snapshot.IsBanned(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// allocator picks cards per role for one build. It is not shared.
type allocator struct {
	pool     []models.OracleCard
	ci       models.ColorIdentity
	shuffler Shuffler
	// used holds non-basic names already in the deck; nil when duplicates
	// are allowed.
	used map[string]struct{}
}

func (e *Engine) newAllocator(pool []models.OracleCard, ci models.ColorIdentity, commander string, seed *uint64) *allocator {
	a := &allocator{pool: pool, ci: ci, shuffler: e.shuffler}
	if seed != nil {
		a.shuffler = SeededShuffler(*seed)
	}
	if !e.allowDuplicates {
		a.used = map[string]struct{}{models.NameKey(commander): {}}
	}
	return a
}

func (a *allocator) dedupe() bool { return a.used != nil }

// pick selects up to n names tagged with role. When fewer role-tagged cards
// exist, any color-legal card of the pool is eligible as padding.
func (a *allocator) pick(role models.Role, n int) []string {
	if n <= 0 {
		return nil
	}

	var candidates []models.OracleCard
	seen := make(map[string]struct{})
	add := func(c models.OracleCard) {
		if !c.MatchesColorIdentity(a.ci) {
			return
		}
		if a.dedupe() {
			key := models.NameKey(c.Name)
			if _, ok := a.used[key]; ok {
				return
			}
			if _, ok := seen[key]; ok {
				return
			}
			seen[key] = struct{}{}
		}
		candidates = append(candidates, c)
	}

	for _, c := range a.pool {
		if c.Roles.Has(role) {
			add(c)
		}
	}
	if len(candidates) < n {
		for _, c := range a.pool {
			add(c)
		}
	}

	a.shuffler.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
		if a.dedupe() && !c.IsBasicLand {
			a.used[models.NameKey(c.Name)] = struct{}{}
		}
	}
	return names
}
