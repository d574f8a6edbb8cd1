// Package colored factorizes up to indistinguishable positions.
//
// Puzzles often repeat a sticker color, so any permutation that keeps each
// color class in place setwise solves them. [Search] looks for a short
// word W over a finished short-word table such that target⁻¹∘replay(W)
// maps every class into itself.
package colored

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/perm"
)

// Classes partitions the domain [0, n) into color classes.
type Classes struct {
	classOf []int
	members [][]int
}

// NewClasses builds a partition of n points from groups. Points that
// appear in no group form singleton classes. A point in two groups or out
// of range is an error.
func NewClasses(n int, groups [][]int) (*Classes, error) {
	c := &Classes{classOf: make([]int, n)}
	for i := range c.classOf {
		c.classOf[i] = -1
	}
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		id := len(c.members)
		for _, x := range g {
			if x < 0 || x >= n {
				return nil, errs.New(errs.ErrCodeInvalidInput, "class point %d out of range [0,%d)", x, n)
			}
			if c.classOf[x] != -1 {
				return nil, errs.New(errs.ErrCodeInvalidInput, "point %d appears in two classes", x)
			}
			c.classOf[x] = id
		}
		c.members = append(c.members, slices.Sorted(slices.Values(g)))
	}
	for x, id := range c.classOf {
		if id == -1 {
			c.classOf[x] = len(c.members)
			c.members = append(c.members, []int{x})
		}
	}
	return c, nil
}

// Singletons returns the finest partition: every point is its own class.
func Singletons(n int) *Classes {
	c, _ := NewClasses(n, nil)
	return c
}

// ClassesFromLabels groups positions sharing a label. The label list is
// the goal arrangement, one label per position.
func ClassesFromLabels(labels []string) *Classes {
	index := make(map[string]int)
	var groups [][]int
	for i, l := range labels {
		id, ok := index[l]
		if !ok {
			id = len(groups)
			index[l] = id
			groups = append(groups, nil)
		}
		groups[id] = append(groups[id], i)
	}
	c, _ := NewClasses(len(labels), groups)
	return c
}

// ParseLabels splits a ";"-separated goal arrangement such as
// "A;B;A;B" into labels.
func ParseLabels(s string) []string {
	parts := strings.Split(strings.TrimSpace(s), ";")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Size returns the domain size.
func (c *Classes) Size() int { return len(c.classOf) }

// Len returns the number of classes.
func (c *Classes) Len() int { return len(c.members) }

// Of returns the class index of point x.
func (c *Classes) Of(x int) int { return c.classOf[x] }

// Members returns the points of class id in increasing order.
func (c *Classes) Members(id int) []int { return c.members[id] }

// Same reports whether x and y share a class.
func (c *Classes) Same(x, y int) bool { return c.classOf[x] == c.classOf[y] }

// Preserves reports whether p maps every class into itself.
func (c *Classes) Preserves(p perm.Perm) bool {
	for x, y := range p {
		if c.classOf[x] != c.classOf[y] {
			return false
		}
	}
	return true
}
