// Package pipeline wires puzzle definitions, base finding, table
// construction and factorization into one cached flow shared by the CLI
// and the HTTP server.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Prepare: load a definition, build its generator set and find a base
//  2. Build: load the table from the cache and resume it, or start a new one
//  3. Solve: factorize targets exactly or up to color classes
//
// Each stage can be run independently.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	def, err := pipeline.LoadDefinition("pocket.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := runner.Prepare(ctx, def, opts)
//	table, stats, err := runner.Build(ctx, p, opts)
//	sol, err := runner.Solve(ctx, p, table, pipeline.SolveRequest{Target: "(0,1,2)"}, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shortword/pkg/cache"
	"github.com/matzehuels/shortword/pkg/colored"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/schreier"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultRounds is the number of explorer elements consumed per build run.
	DefaultRounds = minkwitz.DefaultRounds

	// DefaultImproveEvery is the number of rounds between improvement passes.
	DefaultImproveEvery = minkwitz.DefaultImproveEvery

	// DefaultMaxWordLen is the initial word-length ceiling.
	DefaultMaxWordLen = minkwitz.DefaultMaxWordLen

	// DefaultMaxSteps bounds colored searches.
	DefaultMaxSteps = colored.DefaultMaxSteps

	// DefaultWorkers is the batch-solve concurrency.
	DefaultWorkers = 4

	// DefaultSeed seeds randomized base finding.
	DefaultSeed = int64(42)
)

// Cache lifetimes per artifact kind. Tables never expire: they only grow
// and are keyed by generators and base.
const (
	TTLBase  = 0
	TTLTable = 0
	TTLSolve = 7 * 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Base options
	Base       []int `json:"base,omitempty"` // overrides the definition's base
	RandomBase bool  `json:"random_base,omitempty"`
	Seed       int64 `json:"seed,omitempty"`
	Confidence int   `json:"confidence,omitempty"`

	// Build options
	Rounds       int    `json:"rounds,omitempty"`
	ImproveEvery int    `json:"improve_every,omitempty"`
	MaxWordLen   int    `json:"max_word_len,omitempty"`
	Fresh        bool   `json:"fresh,omitempty"` // ignore any cached table
	Strategy     string `json:"strategy,omitempty"`

	// Solve options
	MaxSteps    int `json:"max_steps,omitempty"`
	MaxSolveLen int `json:"max_solve_len,omitempty"`
	Workers     int `json:"workers,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Explorer strategies accepted by Options.Strategy.
const (
	StrategyBFS     = "bfs"
	StrategyBounded = "bounded"
	StrategyDepth   = "depth"
)

// ValidStrategies is the set of supported element sources.
var ValidStrategies = map[string]bool{
	StrategyBFS:     true,
	StrategyBounded: true,
	StrategyDepth:   true,
}

// ValidateStrategy checks that a strategy name is valid.
func ValidateStrategy(s string) error {
	if !ValidStrategies[s] {
		return errs.New(errs.ErrCodeInvalidInput,
			"invalid strategy: %q (must be one of: bfs, bounded, depth)", s)
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Rounds < 0 || o.ImproveEvery < 0 || o.MaxWordLen < 0 || o.MaxSteps < 0 || o.MaxSolveLen < 0 || o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "budgets must be non-negative")
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
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Confidence == 0 {
		o.Confidence = schreier.DefaultConfidence
	}
	if o.RandomBase && o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Strategy == "" {
		o.Strategy = StrategyBFS
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// BaseKeyOpts returns cache key options for base finding.
func (o *Options) BaseKeyOpts() cache.BaseKeyOpts {
	return cache.BaseKeyOpts{Random: o.RandomBase, Seed: o.Seed, Confidence: o.Confidence}
}

// BuilderOptions returns the table builder configuration.
func (o *Options) BuilderOptions(orbitSizes []int) minkwitz.Options {
	return minkwitz.Options{
		Rounds:       o.Rounds,
		ImproveEvery: o.ImproveEvery,
		MaxWordLen:   o.MaxWordLen,
		OrbitSizes:   orbitSizes,
		Logger:       o.Logger,
	}
}

// SearchOptions returns the colored search configuration.
func (o *Options) SearchOptions() colored.Options {
	return colored.Options{MaxSteps: o.MaxSteps, MaxWordLen: o.MaxSolveLen, Logger: o.Logger}
}
