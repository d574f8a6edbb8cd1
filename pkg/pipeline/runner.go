package pipeline

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/shortword/pkg/cache"
	"github.com/matzehuels/shortword/pkg/cayley"
	"github.com/matzehuels/shortword/pkg/colored"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/observability"
	"github.com/matzehuels/shortword/pkg/perm"
	"github.com/matzehuels/shortword/pkg/schreier"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that tables are found under the same keys.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner; a built Table is read-only
// and may be shared by concurrent Solve calls.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Puzzle is a prepared definition: parsed generators and a base.
type Puzzle struct {
	Def        *Definition
	Gens       *perm.GeneratorSet
	Base       []int
	OrbitSizes []int    // nil when Base does not cover the group
	Order      *big.Int // product of OrbitSizes, nil when unknown
	Hash       string
	TableKey   string
}

// Prepare parses the generators and finds a base. The base comes from,
// in order: opts.Base, the definition, the cache, FindBase.
func (r *Runner) Prepare(ctx context.Context, def *Definition, opts Options) (*Puzzle, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	gens, err := def.GeneratorSet()
	if err != nil {
		return nil, err
	}
	p := &Puzzle{Def: def, Gens: gens, Hash: def.Hash(gens)}

	supplied := opts.Base
	if supplied == nil {
		supplied = def.Base
	}
	if supplied != nil {
		p.Base, err = schreier.FindBase(gens, schreier.BaseOptions{Supplied: supplied, Logger: opts.Logger})
	} else {
		p.Base, err = r.findBase(ctx, gens, p.Hash, opts)
	}
	if err != nil {
		return nil, err
	}

	p.OrbitSizes = minkwitz.OrbitSizes(gens, p.Base)
	if p.OrbitSizes != nil {
		p.Order = big.NewInt(1)
		for _, s := range p.OrbitSizes {
			p.Order.Mul(p.Order, big.NewInt(int64(s)))
		}
	} else {
		opts.Logger.Warn("base does not cover the group; factorizations may be incomplete", "base", schreier.FormatBase(p.Base))
	}
	p.TableKey = r.Keyer.TableKey(p.Hash, p.Base)
	return p, nil
}

func (r *Runner) findBase(ctx context.Context, gens *perm.GeneratorSet, hash string, opts Options) ([]int, error) {
	key := r.Keyer.BaseKey(hash, opts.BaseKeyOpts())
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if base, err := schreier.ParseBase(string(data)); err == nil && schreier.ValidateBase(base, gens.Size()) == nil {
			opts.Logger.Debug("base cache hit", "key", cache.Describe(key))
			return base, nil
		}
	}

	start := time.Now()
	base, err := schreier.FindBase(gens, schreier.BaseOptions{
		Random:     opts.RandomBase,
		Seed:       opts.Seed,
		Confidence: opts.Confidence,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("found base", "points", len(base), "duration", time.Since(start))
	if err := r.Cache.Set(ctx, key, []byte(schreier.FormatBase(base)), TTLBase); err != nil {
		opts.Logger.Warn("cache base", "err", err)
	}
	return base, nil
}

// BuildResult describes a Build call.
type BuildResult struct {
	minkwitz.RunStats
	Resumed bool // a cached table was continued
	Saved   bool // the table was written back to the cache
}

// Build loads the puzzle's table from the cache and resumes it, or starts
// a new one, then runs one build. The table is written back when the run
// changed it, including when ctx was canceled mid-run.
func (r *Runner) Build(ctx context.Context, p *Puzzle, opts Options) (*minkwitz.Table, BuildResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, BuildResult{}, fmt.Errorf("invalid options: %w", err)
	}
	return r.BuildFrom(ctx, p, r.cachedTable(ctx, p, opts), opts)
}

// BuildFrom runs one build starting from table, or from an empty table
// when table is nil, and writes the result to the cache.
func (r *Runner) BuildFrom(ctx context.Context, p *Puzzle, table *minkwitz.Table, opts Options) (*minkwitz.Table, BuildResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, BuildResult{}, fmt.Errorf("invalid options: %w", err)
	}

	var res BuildResult
	bopts := opts.BuilderOptions(p.OrbitSizes)
	bopts.Explorer = r.explorer(p, opts, table)

	var (
		b   *minkwitz.Builder
		err error
	)
	if table != nil {
		if !slices.Equal(table.Base(), p.Base) {
			return nil, res, errs.New(errs.ErrCodeStructural,
				"table base %s differs from puzzle base %s",
				schreier.FormatBase(table.Base()), schreier.FormatBase(p.Base))
		}
		res.Resumed = true
		b, err = minkwitz.ResumeBuilder(p.Gens, table, bopts)
	} else {
		b, err = minkwitz.NewBuilder(p.Gens, p.Base, bopts)
	}
	if err != nil {
		return nil, res, err
	}

	stats, runErr := b.Run(ctx)
	res.RunStats = stats
	table = b.Table()

	if stats.Changes > 0 || !res.Resumed {
		// Persist with a fresh context so a canceled run still checkpoints.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := r.SaveTable(saveCtx, p, table); err != nil {
			opts.Logger.Warn("cache table", "err", err)
		} else {
			res.Saved = true
		}
	} else {
		opts.Logger.Debug("table unchanged; skipping rewrite", "key", cache.Describe(p.TableKey))
	}
	return table, res, runErr
}

// cachedTable returns the cached table for p, or nil on miss, on
// opts.Fresh, or when the cached table does not match p.
func (r *Runner) cachedTable(ctx context.Context, p *Puzzle, opts Options) *minkwitz.Table {
	if opts.Fresh {
		return nil
	}
	data, hit, err := r.Cache.Get(ctx, p.TableKey)
	if err != nil {
		opts.Logger.Warn("read table cache", "err", err)
		return nil
	}
	if !hit {
		return nil
	}
	t, err := minkwitz.Unmarshal(data)
	if err != nil {
		opts.Logger.Warn("discarding unreadable cached table", "err", err)
		return nil
	}
	if err := t.Compatible(p.Gens, p.Base); err != nil {
		opts.Logger.Warn("discarding cached table for a different puzzle", "err", err)
		return nil
	}
	opts.Logger.Debug("table cache hit", "cells", t.Len(), "processed", t.Processed)
	return t
}

// LoadTable returns the cached table for p without building.
func (r *Runner) LoadTable(ctx context.Context, p *Puzzle) (*minkwitz.Table, error) {
	opts := Options{Logger: r.Logger}
	_ = opts.ValidateAndSetDefaults()
	t := r.cachedTable(ctx, p, opts)
	if t == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "no cached table for %s; run build first", p.Def.Name)
	}
	return t, nil
}

// SaveTable writes t to the cache under p's table key.
func (r *Runner) SaveTable(ctx context.Context, p *Puzzle, t *minkwitz.Table) error {
	data, err := minkwitz.Marshal(t)
	if err != nil {
		return err
	}
	if err := r.Cache.Set(ctx, p.TableKey, data, TTLTable); err != nil {
		return errs.Wrap(errs.ErrCodePersistence, err, "cache table %s", cache.Describe(p.TableKey))
	}
	return nil
}

// explorer builds the element source for opts.Strategy. Bounded explorers
// are sized for the insertions made while this run and earlier runs consume
// their elements, capped by the group order.
func (r *Runner) explorer(p *Puzzle, opts Options, resumed *minkwitz.Table) cayley.Explorer {
	switch opts.Strategy {
	case StrategyBounded:
		consumed := opts.Rounds
		if resumed != nil {
			consumed += resumed.Processed
		}
		expected := cayley.BoundedCapacity(p.Gens, consumed)
		if p.Order != nil && p.Order.IsInt64() && p.Order.Int64() < int64(expected) {
			expected = int(p.Order.Int64())
		}
		return cayley.NewBounded(p.Gens, expected, cayley.DefaultFalsePositiveRate)
	case StrategyDepth:
		return cayley.NewDepthLimited(p.Gens, opts.MaxWordLen)
	default:
		return cayley.NewBFS(p.Gens)
	}
}

// =============================================================================
// Solving
// =============================================================================

// Solve kinds.
const (
	KindExact   = "exact"
	KindColored = "colored"
)

// SolveRequest is one factorization request.
type SolveRequest struct {
	// Target is the permutation to factorize, in cycles or image-list form.
	Target string `json:"target"`
	// Labels, when set, requests a colored solve with one ';'-separated
	// label per point.
	Labels string `json:"labels,omitempty"`
	// Colored requests a colored solve against the definition's goal.
	Colored bool `json:"colored,omitempty"`
}

// Solution is the outcome of one SolveRequest.
type Solution struct {
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Word   string `json:"word"`
	Length int    `json:"length"`
	Steps  int    `json:"steps,omitempty"`
	Cached bool   `json:"cached,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// Solve factorizes one target. Exact requests walk the table once;
// colored requests run the best-first search.
func (r *Runner) Solve(ctx context.Context, p *Puzzle, t *minkwitz.Table, req SolveRequest, opts Options) (Solution, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Solution{}, fmt.Errorf("invalid options: %w", err)
	}

	sol := Solution{Target: req.Target, Kind: KindExact}
	target, err := ParseTarget(req.Target, p.Gens.Size())
	if err != nil {
		return sol, err
	}

	var classes *colored.Classes
	switch {
	case req.Labels != "":
		labels := colored.ParseLabels(req.Labels)
		if len(labels) != p.Gens.Size() {
			return sol, errs.New(errs.ErrCodeInvalidInput, "labels has %d entries, want %d", len(labels), p.Gens.Size())
		}
		classes = colored.ClassesFromLabels(labels)
	case req.Colored:
		classes = p.Def.Classes()
	}
	if classes != nil {
		sol.Kind = KindColored
	}

	key := r.Keyer.SolveKey(p.TableKey, cache.SolveKeyOpts{
		Target:   target.Key(),
		Classes:  classesKey(classes),
		MaxSteps: opts.MaxSteps,
		Revision: t.Changes,
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if w, err := p.Gens.ParseWord(string(data)); err == nil {
			sol.Word, sol.Length, sol.Cached = string(data), len(w), true
			return sol, nil
		}
	}

	var word perm.Word
	if classes == nil {
		start := time.Now()
		word, err = minkwitz.Factorize(t, target)
		observability.Search().OnSearchComplete(ctx, KindExact, len(word), 0, time.Since(start), err)
	} else {
		var res colored.Result
		res, err = colored.Search(ctx, t, target, classes, opts.SearchOptions())
		word, sol.Steps = res.Word, res.Steps
	}
	if err != nil {
		return sol, err
	}

	sol.Word = p.Gens.Render(word)
	sol.Length = len(word)
	if err := r.Cache.Set(ctx, key, []byte(sol.Word), TTLSolve); err != nil {
		opts.Logger.Debug("cache solution", "err", err)
	}
	return sol, nil
}

// SolveBatch solves reqs concurrently with opts.Workers goroutines.
// Per-request failures are reported in Solution.Error; only cancellation
// aborts the batch.
func (r *Runner) SolveBatch(ctx context.Context, p *Puzzle, t *minkwitz.Table, reqs []SolveRequest, opts Options) ([]Solution, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	out := make([]Solution, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			sol, err := r.Solve(gctx, p, t, req, opts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				sol.Error = errs.UserMessage(err)
				sol.Code = string(errs.GetCode(err))
			}
			out[i] = sol
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	failed := 0
	for _, s := range out {
		if s.Error != "" {
			failed++
		}
	}
	opts.Logger.Info("batch solved", "targets", len(reqs), "failed", failed)
	return out, nil
}

func classesKey(c *colored.Classes) string {
	if c == nil {
		return ""
	}
	key := make([]byte, 0, 4*c.Size())
	for i := range c.Size() {
		key = fmt.Appendf(key, "%d,", c.Of(i))
	}
	return string(key)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
