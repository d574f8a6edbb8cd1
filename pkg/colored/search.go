package colored

import (
	"container/heap"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/observability"
	"github.com/matzehuels/shortword/pkg/perm"
)

// DefaultMaxSteps is the number of states Search may expand by default.
const DefaultMaxSteps = 100_000

// Options configures Search.
type Options struct {
	// MaxSteps bounds the number of states popped from the queue.
	MaxSteps int
	// MaxWordLen drops states whose word exceeds it. Zero means no bound.
	MaxWordLen int

	Logger *log.Logger
}

// ValidateAndSetDefaults fills zero fields with defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxSteps < 0 || o.MaxWordLen < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "search budgets must be non-negative")
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// Result is a successful colored factorization.
type Result struct {
	Word perm.Word
	// Residual is target⁻¹∘replay(Word); it maps every class into itself.
	Residual perm.Perm
	Steps    int
}

// state is a search node. x.Perm is replay(x.Word) and residual is
// target⁻¹∘x.Perm. Base rows before next already send their base point
// into its class.
type state struct {
	x        perm.Elem
	residual perm.Perm
	next     int
	seq      int
}

type queue []*state

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if li, lj := q[i].x.Len(), q[j].x.Len(); li != lj {
		return li < lj
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(v any)   { *q = append(*q, v.(*state)) }
func (q *queue) Pop() any {
	old := *q
	s := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return s
}

type searcher struct {
	table   *minkwitz.Table
	base    []int
	classes *Classes
	target  perm.Perm // inverse of the target
	opts    Options

	q      queue
	seq    int
	best   residualIndex[int] // shortest queued word per residual
	closed residualIndex[struct{}]
}

// residualIndex maps permutations to values. Buckets are keyed by hash and
// entries confirmed by equality, so a collision never merges two states.
type residualIndex[V any] map[uint64][]residualEntry[V]

type residualEntry[V any] struct {
	p perm.Perm
	v V
}

func (ix residualIndex[V]) get(h uint64, p perm.Perm) (V, bool) {
	for _, e := range ix[h] {
		if e.p.Equal(p) {
			return e.v, true
		}
	}
	var zero V
	return zero, false
}

func (ix residualIndex[V]) put(h uint64, p perm.Perm, v V) {
	bucket := ix[h]
	for i := range bucket {
		if bucket[i].p.Equal(p) {
			bucket[i].v = v
			return
		}
	}
	ix[h] = append(bucket, residualEntry[V]{p: p, v: v})
}

// Search finds a word W, shortest first among the states it explores, such
// that target⁻¹∘replay(W) maps every class into itself. With singleton
// classes replay(W) equals target.
//
// States are expanded best first by word length. A state's residual is
// extended on the right by inverse table cells, which leaves the images of
// already satisfied base points untouched. For the first base point b whose
// image leaves its class, each class member m reachable as the image of b
// is tried: directly through the cell (row, r⁻¹(m)), or, when that cell is
// missing, through a later row k with cells (k, r⁻¹(m)) and (row, base[k]).
// When the table factorizes target exactly, that word is queued as well, so
// a colored solve is never worse than the exact one.
//
// Search returns an Exhausted error when MaxSteps states were expanded and
// an Incomplete error when the reachable states ran out.
func Search(ctx context.Context, table *minkwitz.Table, target perm.Perm, classes *Classes, opts Options) (Result, error) {
	start := time.Now()
	res, err := search(ctx, table, target, classes, opts)
	observability.Search().OnSearchComplete(ctx, "colored", len(res.Word), res.Steps, time.Since(start), err)
	return res, err
}

func search(ctx context.Context, table *minkwitz.Table, target perm.Perm, classes *Classes, opts Options) (Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}
	if target.Size() != table.Size() || classes.Size() != table.Size() {
		return Result{}, errs.New(errs.ErrCodeStructural,
			"size mismatch: target %d, classes %d, table %d", target.Size(), classes.Size(), table.Size())
	}

	s := &searcher{
		table:   table,
		base:    table.Base(),
		classes: classes,
		target:  target.Inverse(),
		opts:    opts,
		best:    make(residualIndex[int]),
		closed:  make(residualIndex[struct{}]),
	}
	s.push(perm.IdentityElem(table.Size()), 0)
	if w, err := minkwitz.Factorize(table, target); err == nil {
		s.push(perm.Elem{Perm: target.Clone(), Word: w}, 0)
	}

	steps := 0
	for s.q.Len() > 0 {
		if steps%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Steps: steps}, err
			}
		}
		if steps >= opts.MaxSteps {
			opts.Logger.Debug("colored search exhausted", "steps", steps, "queued", s.q.Len())
			return Result{Steps: steps}, errs.New(errs.ErrCodeExhausted,
				"no class-preserving word within %d steps", opts.MaxSteps)
		}
		cur := heap.Pop(&s.q).(*state)
		h := cur.residual.Hash()
		if _, done := s.closed.get(h, cur.residual); done {
			continue
		}
		s.closed.put(h, cur.residual, struct{}{})
		steps++

		if classes.Preserves(cur.residual) {
			opts.Logger.Debug("colored search done", "steps", steps, "word", cur.x.Len(), "queued", s.q.Len())
			return Result{Word: cur.x.Word, Residual: cur.residual, Steps: steps}, nil
		}
		if cur.next == len(s.base) {
			// Every base point is satisfied but some other point is not.
			// Only the identity fixes the whole base, so nothing can help.
			continue
		}
		s.expand(cur)
	}
	return Result{Steps: steps}, errs.New(errs.ErrCodeIncomplete,
		"table has no cells leading to a class-preserving residual")
}

// expand pushes the successors of cur for row cur.next.
func (s *searcher) expand(cur *state) {
	row := cur.next
	b := s.base[row]
	rinv := cur.residual.Inverse()

	for _, m := range s.classes.Members(s.classes.Of(b)) {
		j := rinv[m]
		if e, ok := s.table.Get(row, j); ok {
			s.push(cur.x.Compose(e.Inverse()), row)
			continue
		}
		for k := row + 1; k < len(s.base); k++ {
			e1, ok := s.table.Get(k, j)
			if !ok {
				continue
			}
			e2, ok := s.table.Get(row, s.base[k])
			if !ok {
				continue
			}
			s.push(cur.x.Compose(e1.Inverse()).Compose(e2.Inverse()), row)
		}
	}
}

// push queues x unless its residual was already expanded or is queued
// with a word at most as long, or x's word is too long. from is the first
// row that may still be unsatisfied.
func (s *searcher) push(x perm.Elem, from int) {
	if s.opts.MaxWordLen > 0 && x.Len() > s.opts.MaxWordLen {
		return
	}
	r := perm.Compose(s.target, x.Perm)
	h := r.Hash()
	if _, done := s.closed.get(h, r); done {
		return
	}
	if n, ok := s.best.get(h, r); ok && n <= x.Len() {
		return
	}
	s.best.put(h, r, x.Len())

	next := from
	for next < len(s.base) && s.classes.Same(r[s.base[next]], s.base[next]) {
		next++
	}
	heap.Push(&s.q, &state{x: x, residual: r, next: next, seq: s.seq})
	s.seq++
}
