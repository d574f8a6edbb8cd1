package cayley

import (
	"github.com/matzehuels/shortword/pkg/perm"
)

// Explorer yields group elements with words in non-decreasing word length.
// Next returns false once the explorer is exhausted.
type Explorer interface {
	Next() (perm.Elem, bool)
	Produced() int
}

// BFS walks the Cayley graph breadth first.
type BFS struct {
	gens     *perm.GeneratorSet
	letters  []perm.Letter
	visited  VisitedSet
	queue    []perm.Elem
	produced int
}

// NewBFS returns a breadth-first explorer with an exact visited set. It
// produces every element of the generated group exactly once.
func NewBFS(gens *perm.GeneratorSet) *BFS {
	return newBFS(gens, NewExactSet())
}

// NewBounded returns a breadth-first explorer whose visited set is a Bloom
// filter sized for expected insertions. Its memory stays bounded by the
// filter and the frontier, at the cost of occasionally skipping an
// element. Every neighbour is inserted when it is queued, so expected
// should come from BoundedCapacity rather than the number of elements the
// caller means to consume.
func NewBounded(gens *perm.GeneratorSet, expected int, fpRate float64) *BFS {
	return newBFS(gens, NewBloomSet(expected, fpRate))
}

// BoundedCapacity returns how many visited-set insertions a breadth-first
// explorer over gens can make while producing n elements: the identity plus
// one per letter per produced element.
func BoundedCapacity(gens *perm.GeneratorSet, n int) int {
	return 1 + max(n, 0)*len(gens.Letters())
}

func newBFS(gens *perm.GeneratorSet, visited VisitedSet) *BFS {
	id := perm.IdentityElem(gens.Size())
	visited.Add(id.Perm)
	return &BFS{
		gens:    gens,
		letters: gens.Letters(),
		visited: visited,
		queue:   []perm.Elem{id},
	}
}

// Next returns the next element in breadth-first order. Neighbours are
// marked visited when enqueued, so no element is queued twice.
func (b *BFS) Next() (perm.Elem, bool) {
	if len(b.queue) == 0 {
		return perm.Elem{}, false
	}
	e := b.queue[0]
	b.queue[0] = perm.Elem{}
	b.queue = b.queue[1:]

	for _, l := range b.letters {
		next := b.gens.Elem(l).Compose(e)
		if b.visited.Test(next.Perm) {
			continue
		}
		b.visited.Add(next.Perm)
		b.queue = append(b.queue, next)
	}
	b.produced++
	return e, true
}

// Produced returns the number of elements returned so far.
func (b *BFS) Produced() int { return b.produced }

// Frontier returns the number of elements queued but not yet produced.
func (b *BFS) Frontier() int { return len(b.queue) }

// Skip advances e by up to n elements and returns how many were consumed.
func Skip(e Explorer, n int) int {
	for i := 0; i < n; i++ {
		if _, ok := e.Next(); !ok {
			return i
		}
	}
	return n
}

// Take returns up to n elements from e. A non-positive n drains e.
func Take(e Explorer, n int) []perm.Elem {
	var out []perm.Elem
	for n <= 0 || len(out) < n {
		x, ok := e.Next()
		if !ok {
			break
		}
		out = append(out, x)
	}
	return out
}
