package schreier

import (
	"math/rand"

	"github.com/matzehuels/shortword/pkg/cayley"
	"github.com/matzehuels/shortword/pkg/perm"
)

// DefaultConfidence is the number of consecutive trivial residues after
// which the randomized chain stops.
const DefaultConfidence = 32

// Sampler draws group elements.
type Sampler interface {
	Sample() perm.Perm
}

// RandomSampler draws nearly uniform elements by product replacement.
type RandomSampler struct {
	rng   *rand.Rand
	state []perm.Perm
	acc   perm.Perm
}

const (
	productReplacementSlots  = 10
	productReplacementWarmup = 50
)

// NewRandomSampler seeds product replacement with gens. The sampler owns
// rng from here on; callers fix the seed to make runs reproducible.
func NewRandomSampler(gens []perm.Perm, rng *rand.Rand) *RandomSampler {
	slots := max(productReplacementSlots, len(gens))
	s := &RandomSampler{rng: rng, state: make([]perm.Perm, slots)}
	for i := range s.state {
		s.state[i] = gens[i%len(gens)].Clone()
	}
	s.acc = perm.Identity(gens[0].Size())
	for i := 0; i < productReplacementWarmup; i++ {
		s.Sample()
	}
	return s
}

// Sample replaces a random slot by its product with another slot, or that
// slot's inverse, and folds the result into the accumulator.
func (s *RandomSampler) Sample() perm.Perm {
	i := s.rng.Intn(len(s.state))
	j := s.rng.Intn(len(s.state) - 1)
	if j >= i {
		j++
	}
	other := s.state[j]
	if s.rng.Intn(2) == 1 {
		other = other.Inverse()
	}
	if s.rng.Intn(2) == 1 {
		s.state[i] = perm.Compose(s.state[i], other)
	} else {
		s.state[i] = perm.Compose(other, s.state[i])
	}
	s.acc = perm.Compose(s.acc, s.state[i])
	return s.acc
}

// ExplorerSampler samples by walking a Cayley explorer. Once the explorer
// is exhausted it returns the identity.
type ExplorerSampler struct {
	ex cayley.Explorer
	n  int
}

// NewExplorerSampler wraps ex as a Sampler on n points.
func NewExplorerSampler(ex cayley.Explorer, n int) *ExplorerSampler {
	return &ExplorerSampler{ex: ex, n: n}
}

// Sample returns the next explored element.
func (s *ExplorerSampler) Sample() perm.Perm {
	e, ok := s.ex.Next()
	if !ok {
		return perm.Identity(s.n)
	}
	return e.Perm
}

// NewRandomChain runs randomized Schreier-Sims. Each sample is sifted; a
// non-trivial residue that stopped at level j becomes a strong generator
// of levels 0..j, opening a new level when it passed them all. The run
// stops after confidence consecutive trivial residues.
func NewRandomChain(gens []perm.Perm, sampler Sampler, confidence int) (*Chain, error) {
	n, err := checkSizes(gens)
	if err != nil {
		return nil, err
	}
	c := &Chain{n: n}
	if len(gens) == 0 {
		return c, nil
	}
	if confidence <= 0 {
		confidence = DefaultConfidence
	}

	for _, g := range gens {
		c.addResidue(g)
	}
	for trivial := 0; trivial < confidence; {
		if c.addResidue(sampler.Sample()) {
			trivial = 0
		} else {
			trivial++
		}
	}
	return c, nil
}

// addResidue sifts p and records non-trivial residues as strong
// generators until p sifts to the identity. Every round grows a basic
// orbit or opens a level, so the loop ends. It reports whether the chain
// changed.
func (c *Chain) addResidue(p perm.Perm) bool {
	changed := false
	for {
		h, j := c.siftFrom(0, p)
		if h.IsIdentity() {
			return changed
		}
		changed = true
		if j == len(c.levels) {
			c.levels = append(c.levels, newLevel(c.nextPoint(h), c.n))
		}
		for k := 0; k <= j; k++ {
			lv := c.levels[k]
			lv.gens = append(lv.gens, h)
			lv.trans.grow(lv.gens)
		}
	}
}
