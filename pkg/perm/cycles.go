package perm

import (
	"fmt"
	"strconv"
	"strings"
)

// Cycles returns the disjoint cycles of p, fixed points excluded. Each
// cycle starts at its smallest point and cycles are ordered by that point.
func (p Perm) Cycles() [][]int {
	visited := make([]bool, len(p))
	var out [][]int
	for start := range p {
		if visited[start] || p[start] == start {
			visited[start] = true
			continue
		}
		var cycle []int
		for x := start; !visited[x]; x = p[x] {
			visited[x] = true
			cycle = append(cycle, x)
		}
		out = append(out, cycle)
	}
	return out
}

// IsEven reports whether p is an even permutation: the number of its
// even-length cycles is even.
func (p Perm) IsEven() bool {
	even := 0
	for _, c := range p.Cycles() {
		if len(c)%2 == 0 {
			even++
		}
	}
	return even%2 == 0
}

// Order returns the order of p in its cyclic subgroup, the least common
// multiple of its cycle lengths.
func (p Perm) Order() int {
	order := 1
	for _, c := range p.Cycles() {
		order = lcm(order, len(c))
	}
	return order
}

// Info summarizes the cycle structure of a permutation.
type Info struct {
	Cycles [][]int
	Even   bool
	Order  int
}

// Info returns the cycle structure and parity of p.
func (p Perm) Info() Info {
	return Info{Cycles: p.Cycles(), Even: p.IsEven(), Order: p.Order()}
}

// String renders p in 0-indexed cycle notation, "()" for the identity.
func (p Perm) String() string {
	cycles := p.Cycles()
	if len(cycles) == 0 {
		return "()"
	}
	var b strings.Builder
	for _, c := range cycles {
		b.WriteByte('(')
		for i, x := range c {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(x))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ParseCycles parses 0-indexed cycle notation into a permutation on n
// points. Points inside a cycle are separated by commas or spaces.
// "()" and the empty string denote the identity.
//
//	p, err := perm.ParseCycles("(0,4,6)(1,5,7)", 8)
func ParseCycles(s string, n int) (Perm, error) {
	p := Identity(n)
	seen := make([]bool, n)
	rest := strings.TrimSpace(s)
	for rest != "" {
		if rest[0] != '(' {
			return nil, fmt.Errorf("parse cycles %q: expected '('", s)
		}
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil, fmt.Errorf("parse cycles %q: unterminated cycle", s)
		}
		fields := strings.FieldsFunc(rest[1:end], func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		cycle := make([]int, 0, len(fields))
		for _, f := range fields {
			x, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("parse cycles %q: %w", s, err)
			}
			if x < 0 || x >= n {
				return nil, fmt.Errorf("parse cycles %q: point %d out of range [0,%d)", s, x, n)
			}
			if seen[x] {
				return nil, fmt.Errorf("parse cycles %q: point %d appears twice", s, x)
			}
			seen[x] = true
			cycle = append(cycle, x)
		}
		for i, x := range cycle {
			p[x] = cycle[(i+1)%len(cycle)]
		}
		rest = strings.TrimSpace(rest[end+1:])
	}
	return p, nil
}

// MustParseCycles is like ParseCycles but panics on error.
func MustParseCycles(s string, n int) Perm {
	p, err := ParseCycles(s, n)
	if err != nil {
		panic(err)
	}
	return p
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}
