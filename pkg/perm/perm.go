package perm

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Perm is a permutation of [0, len(p)) stored as its image list:
// p[i] is the image of point i.
//
// Perm values are treated as immutable once built. Every operation in this
// package returns a fresh slice.
type Perm []int

// New validates images and returns them as a Perm. It returns an error if
// some value is out of range or appears twice.
func New(images []int) (Perm, error) {
	p := Perm(slices.Clone(images))
	if !p.Valid() {
		return nil, fmt.Errorf("not a permutation of [0,%d): %v", len(images), images)
	}
	return p, nil
}

// MustNew is like New but panics on invalid input. Intended for literals in
// tests and examples.
func MustNew(images ...int) Perm {
	p, err := New(images)
	if err != nil {
		panic(err)
	}
	return p
}

// Identity returns the identity permutation on n points.
func Identity(n int) Perm {
	return Perm(Seq(n))
}

// Valid reports whether every value in [0, len(p)) appears exactly once.
func (p Perm) Valid() bool {
	seen := make([]bool, len(p))
	for _, v := range p {
		if v < 0 || v >= len(p) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// Size returns the domain size.
func (p Perm) Size() int { return len(p) }

// Apply returns the image of point x.
func (p Perm) Apply(x int) int { return p[x] }

// Compose returns a∘b, the permutation that applies b first and then a.
// It panics if the domain sizes differ.
func Compose(a, b Perm) Perm {
	if len(a) != len(b) {
		panic(fmt.Sprintf("perm: compose size mismatch %d != %d", len(a), len(b)))
	}
	out := make(Perm, len(a))
	for i, v := range b {
		out[i] = a[v]
	}
	return out
}

// Inverse returns p⁻¹.
func (p Perm) Inverse() Perm {
	out := make(Perm, len(p))
	for i, v := range p {
		out[v] = i
	}
	return out
}

// IsIdentity reports whether p fixes every point.
func (p Perm) IsIdentity() bool {
	for i, v := range p {
		if i != v {
			return false
		}
	}
	return true
}

// Equal reports whether p and q have identical images.
func (p Perm) Equal(q Perm) bool {
	return slices.Equal(p, q)
}

// Clone returns an independent copy of p.
func (p Perm) Clone() Perm {
	return slices.Clone(p)
}

// Moved returns the points not fixed by p, in increasing order.
func (p Perm) Moved() []int {
	var out []int
	for i, v := range p {
		if i != v {
			out = append(out, i)
		}
	}
	return out
}

// Key returns a string usable as an exact map key for p.
func (p Perm) Key() string {
	return string(p.bytes())
}

// Hash returns a 64-bit xxhash digest of p. Equal permutations hash
// equally; distinct ones may collide.
func (p Perm) Hash() uint64 {
	return xxhash.Sum64(p.bytes())
}

func (p Perm) bytes() []byte {
	buf := make([]byte, 0, 4*len(p))
	for _, v := range p {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}
