package schreier

import (
	"math/big"
	"slices"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

// Level is one stabilizer in a chain: the group fixing the base points of
// earlier levels, with the orbit of this level's base point under it.
type Level struct {
	Point int
	gens  []perm.Perm
	trans *Transversal
}

// OrbitSize returns the size of the basic orbit at this level.
func (l *Level) OrbitSize() int { return l.trans.Len() }

// Generators returns the number of strong generators at this level.
func (l *Level) Generators() int { return len(l.gens) }

// Transversal returns the basic orbit with its representatives.
func (l *Level) Transversal() *Transversal { return l.trans }

// Chain is a stabilizer chain with strong generating set.
type Chain struct {
	n      int
	prefix []int // base points to use first, in order
	levels []*Level
}

func newLevel(point, n int) *Level {
	return &Level{
		Point: point,
		trans: &Transversal{
			Alpha:  point,
			Orbit:  []int{point},
			reps:   map[int]perm.Perm{point: perm.Identity(n)},
			parent: map[int]int{},
			via:    map[int]int{},
		},
	}
}

func checkSizes(gens []perm.Perm) (int, error) {
	if len(gens) == 0 {
		return 0, nil
	}
	n := gens[0].Size()
	for i, g := range gens {
		if g.Size() != n {
			return 0, errs.New(errs.ErrCodeStructural,
				"generator %d acts on %d points, expected %d", i, g.Size(), n)
		}
		if !g.Valid() {
			return 0, errs.New(errs.ErrCodeStructural, "generator %d is not a permutation", i)
		}
	}
	return n, nil
}

// NewChain runs deterministic Schreier-Sims. Each generator is added to
// the top level; adding a generator extends the basic orbit and feeds the
// new Schreier generators to the next level, which stops as soon as they
// sift to the identity. An empty generator set gives the trivial chain.
func NewChain(gens []perm.Perm) (*Chain, error) {
	n, err := checkSizes(gens)
	if err != nil {
		return nil, err
	}
	c := &Chain{n: n}
	for _, g := range gens {
		c.extend(0, g)
	}
	return c, nil
}

// NewChainWithBase is like NewChain but uses the points of prefix as the
// first base points, in order. Levels beyond the prefix pick points as
// NewChain does. A prefix point fixed by the whole level yields an orbit
// of size one.
func NewChainWithBase(gens []perm.Perm, prefix []int) (*Chain, error) {
	n, err := checkSizes(gens)
	if err != nil {
		return nil, err
	}
	if err := ValidateBase(prefix, n); err != nil {
		return nil, err
	}
	c := &Chain{n: n, prefix: append([]int(nil), prefix...)}
	for _, g := range gens {
		c.extend(0, g)
	}
	return c, nil
}

// nextPoint picks the base point for a new level that must hold g.
func (c *Chain) nextPoint(g perm.Perm) int {
	i := len(c.levels)
	if i < len(c.prefix) {
		return c.prefix[i]
	}
	for _, x := range g.Moved() {
		if !slices.Contains(c.prefix, x) {
			return x
		}
	}
	return g.Moved()[0]
}

func (c *Chain) extend(i int, g perm.Perm) {
	if residue, _ := c.siftFrom(i, g); residue.IsIdentity() {
		return
	}
	if i == len(c.levels) {
		c.levels = append(c.levels, newLevel(c.nextPoint(g), c.n))
	}
	lv := c.levels[i]
	lv.gens = append(lv.gens, g)

	oldOrbit := lv.trans.Len()
	lv.trans.grow(lv.gens)

	// Pairs of an old orbit point with an old generator were handled when
	// that generator was added.
	last := len(lv.gens) - 1
	for idx := 0; idx < lv.trans.Len(); idx++ {
		x := lv.trans.Orbit[idx]
		for gi := 0; gi <= last; gi++ {
			if idx < oldOrbit && gi < last {
				continue
			}
			c.extend(i+1, lv.trans.schreierGenerator(x, lv.gens[gi]))
		}
	}
}

// siftFrom strips p through levels i and below. It returns the residue
// and the level where sifting stopped, len(levels) if it passed them all.
func (c *Chain) siftFrom(i int, p perm.Perm) (perm.Perm, int) {
	h := p
	for j := i; j < len(c.levels); j++ {
		lv := c.levels[j]
		u, ok := lv.trans.Rep(h[lv.Point])
		if !ok {
			return h, j
		}
		h = perm.Compose(u.Inverse(), h)
	}
	return h, len(c.levels)
}

// Sift strips p through the whole chain and returns the residue.
func (c *Chain) Sift(p perm.Perm) perm.Perm {
	h, _ := c.siftFrom(0, p)
	return h
}

// Contains reports whether p belongs to the group described by c.
func (c *Chain) Contains(p perm.Perm) bool {
	if p.Size() != c.n {
		return false
	}
	return c.Sift(p).IsIdentity()
}

// Base returns the base points in level order.
func (c *Chain) Base() []int {
	out := make([]int, len(c.levels))
	for i, lv := range c.levels {
		out[i] = lv.Point
	}
	return out
}

// Levels returns the chain levels, top first.
func (c *Chain) Levels() []*Level { return c.levels }

// Size returns the domain size.
func (c *Chain) Size() int { return c.n }

// Order returns the group order, the product of the basic orbit sizes.
func (c *Chain) Order() *big.Int {
	order := big.NewInt(1)
	for _, lv := range c.levels {
		order.Mul(order, big.NewInt(int64(lv.OrbitSize())))
	}
	return order
}
