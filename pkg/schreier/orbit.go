package schreier

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/shortword/pkg/perm"
)

// Transversal is the orbit of a point together with a coset
// representative for every orbit point: Rep(x) maps Alpha to x.
type Transversal struct {
	Alpha  int
	Orbit  []int // discovery order, Orbit[0] == Alpha
	reps   map[int]perm.Perm
	parent map[int]int // orbit point the rep was derived from
	via    map[int]int // generator index used
}

// Orbit computes the orbit of alpha under gens level by level. A point
// y = g(x) reached for the first time records g∘Rep(x) as its
// representative.
func Orbit(alpha int, gens []perm.Perm) *Transversal {
	n := 0
	if len(gens) > 0 {
		n = gens[0].Size()
	}
	t := &Transversal{
		Alpha:  alpha,
		Orbit:  []int{alpha},
		reps:   map[int]perm.Perm{alpha: perm.Identity(n)},
		parent: map[int]int{},
		via:    map[int]int{},
	}
	t.grow(gens)
	return t
}

// grow extends the orbit with any points newly reachable under gens.
// Existing representatives are kept.
func (t *Transversal) grow(gens []perm.Perm) {
	for k := 0; k < len(t.Orbit); k++ {
		x := t.Orbit[k]
		for gi, g := range gens {
			y := g[x]
			if _, ok := t.reps[y]; ok {
				continue
			}
			t.reps[y] = perm.Compose(g, t.reps[x])
			t.parent[y] = x
			t.via[y] = gi
			t.Orbit = append(t.Orbit, y)
		}
	}
}

// Len returns the orbit size.
func (t *Transversal) Len() int { return len(t.Orbit) }

// Contains reports whether x lies in the orbit.
func (t *Transversal) Contains(x int) bool {
	_, ok := t.reps[x]
	return ok
}

// Rep returns the representative mapping Alpha to x.
func (t *Transversal) Rep(x int) (perm.Perm, bool) {
	p, ok := t.reps[x]
	return p, ok
}

// SchreierVector returns, for each of n points, the index of the generator
// that first reached it, 0-based. Alpha maps to -1 and points outside the
// orbit to -2.
func (t *Transversal) SchreierVector(n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = -2
	}
	v[t.Alpha] = -1
	for y, gi := range t.via {
		v[y] = gi
	}
	return v
}

// StabilizerGenerators returns the Schreier generators of the stabilizer
// of alpha: Rep(g(x))⁻¹ · g · Rep(x) for every orbit point x and generator
// g, identities dropped and duplicates removed. It returns nil for an
// empty generator set or generators of differing sizes.
func StabilizerGenerators(alpha int, gens []perm.Perm) []perm.Perm {
	if len(gens) == 0 {
		return nil
	}
	for _, g := range gens[1:] {
		if g.Size() != gens[0].Size() {
			return nil
		}
	}
	if alpha < 0 || alpha >= gens[0].Size() {
		return nil
	}

	t := Orbit(alpha, gens)
	seen := make(map[string]bool)
	var out []perm.Perm
	for _, x := range t.Orbit {
		for _, g := range gens {
			s := t.schreierGenerator(x, g)
			if s.IsIdentity() || seen[s.Key()] {
				continue
			}
			seen[s.Key()] = true
			out = append(out, s)
		}
	}
	return out
}

func (t *Transversal) schreierGenerator(x int, g perm.Perm) perm.Perm {
	return perm.Compose(t.reps[g[x]].Inverse(), perm.Compose(g, t.reps[x]))
}

// ToDOT renders the Schreier tree of the orbit. Edges are labelled with
// names[i] for generator i, or "g<i>" when names is short.
func (t *Transversal) ToDOT(names []string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Orbit {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, shape=circle, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [fontname=\"SF Mono, Menlo, monospace\", fontsize=10];\n\n")

	fmt.Fprintf(&buf, "  p%d [label=\"%d\", fillcolor=\"#dbeafe\"];\n", t.Alpha, t.Alpha)
	for _, y := range t.Orbit[1:] {
		fmt.Fprintf(&buf, "  p%d [label=\"%d\"];\n", y, y)
	}
	for _, y := range t.Orbit[1:] {
		gi := t.via[y]
		label := fmt.Sprintf("g%d", gi)
		if gi < len(names) {
			label = names[gi]
		}
		fmt.Fprintf(&buf, "  p%d -> p%d [label=%q];\n", t.parent[y], y, label)
	}

	buf.WriteString("}\n")
	return buf.String()
}
