package minkwitz

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shortword/pkg/cayley"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/observability"
	"github.com/matzehuels/shortword/pkg/perm"
	"github.com/matzehuels/shortword/pkg/schreier"
)

const (
	// DefaultRounds is the number of explorer elements consumed per run.
	DefaultRounds = 100_000

	// DefaultImproveEvery is the number of rounds between improvement passes.
	DefaultImproveEvery = 10_000

	// DefaultMaxWordLen is the initial word-length ceiling.
	DefaultMaxWordLen = 40

	// progressEvery is how often a run logs its progress, in rounds.
	progressEvery = 10_000
)

// Options configures a Builder.
type Options struct {
	// Rounds is the number of explorer elements to consume in this run.
	Rounds int
	// ImproveEvery is the number of rounds between improvement passes,
	// counted over the table's lifetime.
	ImproveEvery int
	// MaxWordLen is the initial word-length ceiling. Sifting stops once a
	// candidate's word reaches it. It grows by a quarter after every
	// improvement pass.
	MaxWordLen int

	// OrbitSizes, when set, are the basic orbit sizes of the base. The
	// run stops early once every row is complete, and orbit filling skips
	// complete rows.
	OrbitSizes []int

	// Explorer overrides the element source. It must yield the identity
	// first and replay the same sequence on every run for resume to be
	// meaningful. Defaults to exact BFS.
	Explorer cayley.Explorer

	Logger *log.Logger
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// negative budgets.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Rounds < 0 || o.ImproveEvery < 0 || o.MaxWordLen < 0 {
		return errs.New(errs.ErrCodeInvalidInput,
			"budgets must be non-negative (rounds=%d, improve-every=%d, max-word=%d)",
			o.Rounds, o.ImproveEvery, o.MaxWordLen)
	}
	if o.Rounds == 0 {
		o.Rounds = DefaultRounds
	}
	if o.ImproveEvery == 0 {
		o.ImproveEvery = DefaultImproveEvery
	}
	if o.MaxWordLen == 0 {
		o.MaxWordLen = DefaultMaxWordLen
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// Builder grows one Table. It is not safe for concurrent use.
type Builder struct {
	gens     *perm.GeneratorSet
	table    *Table
	opts     Options
	explorer cayley.Explorer
	limit    int
}

// RunStats describes one Run.
type RunStats struct {
	Rounds       int
	Improvements int
	Changes      int
	Limit        int
	Exhausted    bool // the explorer ran out of elements
	Full         bool // every row covers its basic orbit
	Duration     time.Duration
}

// NewBuilder starts a fresh table over base.
func NewBuilder(gens *perm.GeneratorSet, base []int, opts Options) (*Builder, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(base) == 0 {
		return nil, errs.New(errs.ErrCodeStructural, "base is empty")
	}
	if err := schreier.ValidateBase(base, gens.Size()); err != nil {
		return nil, err
	}

	t := NewTable(base, gens.Size())
	t.gens = gens.Len()
	t.Limit = opts.MaxWordLen
	return newBuilder(gens, t, opts), nil
}

// ResumeBuilder continues construction of a loaded table. The explorer is
// advanced past the elements earlier runs consumed, and the ceiling picks
// up where the last run left it unless opts asks for more.
func ResumeBuilder(gens *perm.GeneratorSet, table *Table, opts Options) (*Builder, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := table.Compatible(gens, nil); err != nil {
		return nil, err
	}
	table.gens = gens.Len()
	table.Limit = max(table.Limit, opts.MaxWordLen)

	b := newBuilder(gens, table, opts)
	skipped := cayley.Skip(b.explorer, table.Processed)
	opts.Logger.Debug("resumed table", "processed", table.Processed, "skipped", skipped, "limit", table.Limit)
	return b, nil
}

func newBuilder(gens *perm.GeneratorSet, t *Table, opts Options) *Builder {
	ex := opts.Explorer
	if ex == nil {
		ex = cayley.NewBFS(gens)
	}
	return &Builder{gens: gens, table: t, opts: opts, explorer: ex, limit: t.Limit}
}

// Table returns the table under construction.
func (b *Builder) Table() *Table { return b.table }

// Run consumes up to opts.Rounds explorer elements. It stops early when the
// explorer is exhausted or the table is full. Cancellation is observed
// between rounds only, so the table is always consistent and can be saved
// as a checkpoint even when Run returns the context error.
func (b *Builder) Run(ctx context.Context) (RunStats, error) {
	start := time.Now()
	startChanges := b.table.Changes
	logger := b.opts.Logger
	observability.Build().OnBuildStart(ctx, b.table.Rows(), b.table.Processed)

	var (
		stats RunStats
		err   error
	)
	for stats.Rounds < b.opts.Rounds {
		if err = ctx.Err(); err != nil {
			break
		}
		if b.full() {
			stats.Full = true
			break
		}
		e, ok := b.explorer.Next()
		if !ok {
			stats.Exhausted = true
			break
		}

		b.sift(e, 0)
		b.table.Processed++
		stats.Rounds++

		if b.table.Processed%b.opts.ImproveEvery == 0 {
			b.improveAndFill(ctx)
			stats.Improvements++
		}
		if stats.Rounds%progressEvery == 0 {
			logger.Debug("build progress",
				"rounds", stats.Rounds,
				"processed", b.table.Processed,
				"cells", b.table.Len(),
				"limit", b.limit)
		}
	}
	if !stats.Full {
		stats.Full = b.full()
	}

	stats.Changes = b.table.Changes - startChanges
	stats.Limit = b.limit
	stats.Duration = time.Since(start)
	observability.Build().OnBuildComplete(ctx, stats.Rounds, stats.Changes, stats.Duration, err)
	logger.Info("build run finished",
		"rounds", stats.Rounds,
		"changes", stats.Changes,
		"cells", b.table.Len(),
		"exhausted", stats.Exhausted,
		"full", stats.Full)
	return stats, err
}

// Improve runs one improvement pass and one orbit-fill pass immediately,
// then grows the ceiling.
func (b *Builder) Improve(ctx context.Context) {
	b.improveAndFill(ctx)
}

func (b *Builder) full() bool {
	return b.opts.OrbitSizes != nil && b.table.Full(b.opts.OrbitSizes)
}

func (b *Builder) improveAndFill(ctx context.Context) {
	start := time.Now()
	before := b.table.Changes
	b.improve()
	if !b.full() {
		b.fillOrbits()
	}
	b.limit = b.limit * 5 / 4
	b.table.Limit = b.limit
	observability.Build().OnImprove(ctx, b.limit, b.table.Changes-before, time.Since(start))
	b.opts.Logger.Debug("improvement pass",
		"changes", b.table.Changes-before,
		"limit", b.limit,
		"elapsed", time.Since(start))
}

// sift pushes t through the rows starting at row. The loop visits each row
// at most once and stops at the identity or the word-length ceiling.
func (b *Builder) sift(t perm.Elem, row int) {
	base := b.table.base
	for i := row; i < len(base); i++ {
		if t.Perm.IsIdentity() || t.Len() >= b.limit {
			return
		}
		k := Key{i, t.Perm[base[i]]}
		cur, ok := b.table.entries[k]
		if !ok || t.Len() < cur.Len() {
			b.table.set(k, t.Inverse())
			return
		}
		t = cur.Compose(t)
	}
}

// improve sifts y∘x for every pair of cells x, y sharing a row where
// either is fresh, then clears the row's freshness.
func (b *Builder) improve() {
	t := b.table
	for i := range t.base {
		keys := t.rowKeys(i)
		for _, kx := range keys {
			for _, ky := range keys {
				x, okx := t.entries[kx]
				y, oky := t.entries[ky]
				if !okx || !oky || !(x.Fresh || y.Fresh) {
					continue
				}
				b.sift(y.Compose(x), i)
			}
		}
		for _, k := range t.rowKeys(i) {
			e := t.entries[k]
			e.Fresh = false
			t.entries[k] = e
		}
	}
}

// fillOrbits extends each incomplete row by conjugation. For a cell x in
// the same or a later row and an orbit point p of row i, x moves p to
// q = x(p) inside the same basic orbit, and T(i,p)∘x⁻¹ sends q to base[i]
// while fixing earlier base points. The candidate is stored when q is new
// to the row or its word is strictly shorter than the current one.
func (b *Builder) fillOrbits() {
	t := b.table
	byRow := t.keysByRow()
	for i := range t.base {
		if b.opts.OrbitSizes != nil && len(byRow[i]) == b.opts.OrbitSizes[i] {
			continue
		}
		orbit := make([]int, 0, len(byRow[i]))
		inOrbit := make(map[int]bool, len(byRow[i]))
		for _, k := range byRow[i] {
			orbit = append(orbit, k.Col)
			inOrbit[k.Col] = true
		}

		for j := i; j < len(t.base); j++ {
			for _, kx := range byRow[j] {
				x, ok := t.entries[kx]
				if !ok || x.Perm.IsIdentity() {
					continue
				}
				var xinv perm.Elem
				inverted := false
				for idx := 0; idx < len(orbit); idx++ {
					p := orbit[idx]
					q := x.Perm[p]
					tp := t.entries[Key{i, p}]
					n := tp.Len() + x.Len()
					if n >= b.limit {
						continue
					}
					if cur, ok := t.entries[Key{i, q}]; ok && cur.Len() <= n {
						continue
					}
					if !inverted {
						xinv, inverted = x.Inverse(), true
					}
					t.set(Key{i, q}, tp.Compose(xinv))
					if !inOrbit[q] {
						inOrbit[q] = true
						orbit = append(orbit, q)
					}
				}
			}
		}
	}
}

// OrbitSizes returns the basic orbit sizes of the group generated by gens
// for base, the input Options.OrbitSizes expects. It returns nil when base
// is not a base of the group.
func OrbitSizes(gens *perm.GeneratorSet, base []int) []int {
	chain, err := schreier.NewChainWithBase(gens.Perms(), base)
	if err != nil || len(chain.Levels()) > len(base) {
		return nil
	}
	sizes := make([]int, len(base))
	for i := range sizes {
		sizes[i] = 1
	}
	for i, lv := range chain.Levels() {
		sizes[i] = lv.OrbitSize()
	}
	return sizes
}
