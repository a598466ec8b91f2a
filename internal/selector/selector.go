package selector

import (
	"math/rand/v2"
	"sync"
)

// Selector makes uniformly random, memoryless choices. It is used at both
// decision points of a resolution: which provider strategy to run, and which
// concrete RPC endpoint each page call hits. Spreading consecutive calls
// over independent rate-limited services is the whole robustness mechanism;
// there is deliberately no stickiness between picks.
type Selector struct {
	mu   sync.Mutex
	intn func(int) int
}

// New returns a selector backed by the shared math/rand/v2 generator.
func New() *Selector {
	return &Selector{intn: rand.IntN}
}

// NewSeeded returns a deterministic selector for tests.
func NewSeeded(seed uint64) *Selector {
	r := rand.New(rand.NewPCG(seed, seed))
	return &Selector{intn: r.IntN}
}

// Index picks a uniform random index in [0, n). n must be positive.
func (s *Selector) Index(n int) int {
	if n == 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intn(n)
}
