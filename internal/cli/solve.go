package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		bf       baseFlags
		target   string
		labels   string
		goal     bool
		batch    string
		table    string
		output   string
		maxSteps int
		maxLen   int
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "solve <definition>",
		Short: "Factorize puzzle states into move sequences",
		Long: `Write a target permutation as a move sequence using the puzzle's table.

Targets are given in 0-indexed cycle notation or as a list of images. With
--labels or --goal the target only needs to be reached up to the coloring:
points sharing a label are interchangeable, which usually gives shorter
sequences.`,
		Example: `  shortword solve pocket.toml --target "(8,9,11,10)(2,12,21,7)(3,14,20,5)"
  shortword solve pocket.toml --target "..." --goal
  shortword solve eightpoint.yaml --batch targets.txt -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := pipeline.ValidateOutput(output); err != nil {
				return err
			}
			if (target == "") == (batch == "") {
				return errs.New(errs.ErrCodeInvalidInput, "exactly one of --target and --batch is required")
			}

			opts, err := c.options(&bf, nil)
			if err != nil {
				return err
			}
			opts.MaxSteps = maxSteps
			opts.MaxSolveLen = maxLen
			opts.Workers = workers

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			p, err := c.preparePuzzle(ctx, runner, args[0], opts)
			if err != nil {
				return err
			}
			t, err := c.solveTable(ctx, runner, p, table, opts)
			if err != nil {
				return err
			}

			reqs := []pipeline.SolveRequest{{Target: target, Labels: labels, Colored: goal}}
			if batch != "" {
				if reqs, err = readBatch(batch, labels, goal); err != nil {
					return err
				}
			}

			sols, err := runner.SolveBatch(ctx, p, t, reqs, opts)
			if err != nil {
				return err
			}
			if err := pipeline.WriteSolutions(c.Out, sols, output); err != nil {
				return err
			}
			if batch == "" && sols[0].Error != "" {
				err := errs.New(errs.Code(sols[0].Code), "%s", sols[0].Error)
				if errs.Recoverable(err) {
					printNextStep(c.Out, "Grow the table", "shortword build "+args[0])
				}
				return err
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "", "target permutation: cycles or image list")
	cmd.Flags().StringVar(&labels, "labels", "", "solve up to this coloring: one ';'-separated label per point")
	cmd.Flags().BoolVar(&goal, "goal", false, "solve up to the definition's goal coloring")
	cmd.Flags().StringVar(&batch, "batch", "", "file with one target per line")
	cmd.Flags().StringVar(&table, "table", "", "use the table stored in this file instead of the cache")
	cmd.Flags().StringVarP(&output, "output", "o", pipeline.OutputText, "output format: text, json")
	cmd.Flags().IntVar(&maxSteps, "max-steps", pipeline.DefaultMaxSteps, "state budget for colored solves")
	cmd.Flags().IntVar(&maxLen, "max-len", 0, "drop colored candidates longer than this (0 = unbounded)")
	cmd.Flags().IntVar(&workers, "workers", pipeline.DefaultWorkers, "concurrent solves for --batch")
	return cmd
}

// loadTableFile reads a table file and checks that it belongs to p.
func loadTableFile(path string, p *pipeline.Puzzle) (*minkwitz.Table, error) {
	t, err := minkwitz.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Compatible(p.Gens, p.Base); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "table %s does not fit %s", path, p.Def.Name)
	}
	return t, nil
}

// solveTable returns the table from path, or the cached table, building
// one with default budgets when the cache has none.
func (c *CLI) solveTable(ctx context.Context, runner *pipeline.Runner, p *pipeline.Puzzle, path string, opts pipeline.Options) (*minkwitz.Table, error) {
	if path != "" {
		return loadTableFile(path, p)
	}
	t, err := runner.LoadTable(ctx, p)
	if err == nil {
		return t, nil
	}
	if !errs.Is(err, errs.ErrCodeNotFound) {
		return nil, err
	}

	c.Logger.Info("no cached table; building one", "puzzle", p.Def.Name)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %s...", p.Def.Name))
	spinner.Start()
	t, _, err = runner.Build(ctx, p, opts)
	spinner.Stop()
	return t, err
}

func readBatch(path, labels string, goal bool) ([]pipeline.SolveRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "open batch %s", path)
	}
	defer f.Close()

	reqs, err := pipeline.ReadTargets(f)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].Labels == "" {
			reqs[i].Labels = labels
			reqs[i].Colored = goal
		}
	}
	return reqs, nil
}
