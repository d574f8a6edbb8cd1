// Package cli implements the shortword command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/buildinfo"
	"github.com/matzehuels/shortword/pkg/cache"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "shortword"

	// envCache overrides the cache location ("none", a directory, or a
	// redis:// or mongodb:// URL).
	envCache = "SHORTWORD_CACHE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command results. Logs and spinners go to stderr.
	Out io.Writer

	cacheLocation string
	noCache       bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Shortword factorizes permutation puzzle states into short move sequences",
		Long: `Shortword builds short-word strong generating set tables for permutation
puzzles and uses them to write any reachable state as a short sequence of moves,
either exactly or up to a coloring of the pieces.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cacheLocation, "cache", "", "cache location: directory, redis:// or mongodb:// URL, or none (default ~/.cache/shortword)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the table cache")

	root.AddCommand(c.baseCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, fmt.Sprintf("v%d:", minkwitz.FormatVersion))
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	loc, err := c.resolveCacheLocation()
	if err != nil {
		c.Logger.Warn("no cache directory; caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, loc, appName+":")
}

// resolveCacheLocation applies --cache, then $SHORTWORD_CACHE, then the
// XDG cache directory.
func (c *CLI) resolveCacheLocation() (string, error) {
	if c.cacheLocation != "" {
		return c.cacheLocation, nil
	}
	if env := os.Getenv(envCache); env != "" {
		return env, nil
	}
	return cacheDir()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/shortword/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Shared Flags
// =============================================================================

// baseFlags are the base-selection flags shared by every command that
// prepares a puzzle.
type baseFlags struct {
	base       string
	random     bool
	seed       int64
	confidence int
}

func (f *baseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.base, "base", "", "explicit base as '.'-joined points, or @file")
	cmd.Flags().BoolVar(&f.random, "random", false, "use randomized Schreier-Sims")
	cmd.Flags().Int64Var(&f.seed, "seed", pipeline.DefaultSeed, "seed for --random")
	cmd.Flags().IntVar(&f.confidence, "confidence", 0, "consecutive trivial sifts before --random stops")
}

// buildFlags are the table construction budgets.
type buildFlags struct {
	rounds       int
	improveEvery int
	maxWord      int
	strategy     string
	fresh        bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.rounds, "rounds", pipeline.DefaultRounds, "group elements to process in this run")
	cmd.Flags().IntVar(&f.improveEvery, "improve-every", pipeline.DefaultImproveEvery, "rounds between improvement passes")
	cmd.Flags().IntVar(&f.maxWord, "max-word", pipeline.DefaultMaxWordLen, "initial word-length limit")
	cmd.Flags().StringVar(&f.strategy, "strategy", pipeline.StrategyBFS, "element source: bfs, bounded, depth")
	cmd.Flags().BoolVar(&f.fresh, "fresh", false, "ignore any cached table and start over")
}

// options assembles pipeline options from the shared flag groups.
func (c *CLI) options(bf *baseFlags, uf *buildFlags) (pipeline.Options, error) {
	opts := pipeline.Options{Logger: c.Logger}
	if bf != nil {
		base, err := parseBaseFlag(bf.base)
		if err != nil {
			return opts, err
		}
		opts.Base = base
		opts.RandomBase = bf.random
		opts.Seed = bf.seed
		opts.Confidence = bf.confidence
	}
	if uf != nil {
		opts.Rounds = uf.rounds
		opts.ImproveEvery = uf.improveEvery
		opts.MaxWordLen = uf.maxWord
		opts.Strategy = uf.strategy
		opts.Fresh = uf.fresh
	}
	return opts, opts.ValidateAndSetDefaults()
}

// preparePuzzle loads a definition and finds its base.
func (c *CLI) preparePuzzle(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (*pipeline.Puzzle, error) {
	def, err := pipeline.LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return runner.Prepare(ctx, def, opts)
}
