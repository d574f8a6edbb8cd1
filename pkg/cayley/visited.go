package cayley

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/matzehuels/shortword/pkg/perm"
)

// DefaultFalsePositiveRate is the Bloom filter error rate used when none is
// given.
const DefaultFalsePositiveRate = 1e-7

// VisitedSet records which permutations an explorer has already reached.
// Test may report false positives but never false negatives.
type VisitedSet interface {
	Test(p perm.Perm) bool
	Add(p perm.Perm)
	Len() int
}

type exactSet struct {
	seen map[string]struct{}
}

// NewExactSet returns a VisitedSet backed by a map.
func NewExactSet() VisitedSet {
	return &exactSet{seen: make(map[string]struct{})}
}

func (s *exactSet) Test(p perm.Perm) bool {
	_, ok := s.seen[p.Key()]
	return ok
}

func (s *exactSet) Add(p perm.Perm) { s.seen[p.Key()] = struct{}{} }

func (s *exactSet) Len() int { return len(s.seen) }

type bloomSet struct {
	filter *bloom.BloomFilter
	n      int
}

// NewBloomSet returns a VisitedSet backed by a Bloom filter sized for the
// expected number of elements at the given false positive rate. A
// non-positive rate selects DefaultFalsePositiveRate.
func NewBloomSet(expected int, fpRate float64) VisitedSet {
	if expected < 1 {
		expected = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFalsePositiveRate
	}
	return &bloomSet{filter: bloom.NewWithEstimates(uint(expected), fpRate)}
}

func (s *bloomSet) Test(p perm.Perm) bool { return s.filter.TestString(p.Key()) }

func (s *bloomSet) Add(p perm.Perm) {
	s.filter.AddString(p.Key())
	s.n++
}

// Len returns the number of insertions, not the number of distinct
// members.
func (s *bloomSet) Len() int { return s.n }
