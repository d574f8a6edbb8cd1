package cayley

import (
	"github.com/matzehuels/shortword/pkg/perm"
)

type frame struct {
	elem perm.Elem
	next int // index of the next letter to try
}

// DepthLimited enumerates the Cayley graph by iterative deepening. Pass d
// runs a depth-first walk to depth d and produces the elements whose
// shortest word has length exactly d. Only prefixes that are themselves
// shortest are extended, since every prefix of a shortest word is
// shortest.
type DepthLimited struct {
	gens     *perm.GeneratorSet
	letters  []perm.Letter
	maxDepth int
	depthOf  map[string]int

	depth    int
	stack    []frame
	found    int // elements produced in the current pass
	produced int
	done     bool
}

// NewDepthLimited returns an iterative-deepening explorer that never
// produces words longer than maxDepth.
func NewDepthLimited(gens *perm.GeneratorSet, maxDepth int) *DepthLimited {
	return &DepthLimited{
		gens:     gens,
		letters:  gens.Letters(),
		maxDepth: maxDepth,
		depthOf:  make(map[string]int),
		depth:    -1,
	}
}

// Next returns the next element, finishing each depth before the next.
func (d *DepthLimited) Next() (perm.Elem, bool) {
	for !d.done {
		if len(d.stack) == 0 && !d.startPass() {
			d.done = true
			break
		}
		if e, ok := d.step(); ok {
			d.produced++
			return e, true
		}
	}
	return perm.Elem{}, false
}

// Produced returns the number of elements returned so far.
func (d *DepthLimited) Produced() int { return d.produced }

// startPass begins the walk for the next depth. It reports false when the
// depth limit is reached or the previous pass found nothing new.
func (d *DepthLimited) startPass() bool {
	if d.depth >= 0 && d.found == 0 {
		return false
	}
	if d.depth+1 > d.maxDepth {
		return false
	}
	d.depth++
	d.found = 0
	d.stack = append(d.stack[:0], frame{elem: perm.IdentityElem(d.gens.Size())})
	return true
}

// step advances the walk until it yields an element or the stack empties.
func (d *DepthLimited) step() (perm.Elem, bool) {
	for len(d.stack) > 0 {
		top := &d.stack[len(d.stack)-1]
		level := len(d.stack) - 1

		if level == d.depth {
			e := top.elem
			d.stack = d.stack[:len(d.stack)-1]
			key := e.Perm.Key()
			if _, seen := d.depthOf[key]; seen {
				continue
			}
			d.depthOf[key] = level
			d.found++
			return e, true
		}

		if top.next >= len(d.letters) {
			d.stack = d.stack[:len(d.stack)-1]
			continue
		}
		l := d.letters[top.next]
		top.next++

		child := d.gens.Elem(l).Compose(top.elem)
		if level+1 < d.depth {
			if dep, ok := d.depthOf[child.Perm.Key()]; !ok || dep != level+1 {
				continue
			}
		}
		d.stack = append(d.stack, frame{elem: child})
	}
	return perm.Elem{}, false
}
