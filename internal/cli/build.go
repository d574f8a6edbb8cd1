package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		bf     baseFlags
		uf     buildFlags
		resume string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "build <definition>",
		Short: "Build or extend the short-word table for a puzzle",
		Long: `Build the short-word table for a puzzle, or continue the cached one.

Each run processes --rounds group elements. Tables are checkpointed to the
cache after every run that changed them, also when interrupted, so repeated
runs keep improving the same table.`,
		Example: `  shortword build examples/puzzles/pocket.toml --rounds 200000
  shortword build pocket.toml --resume pocket.swt --out pocket.swt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(&bf, &uf)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			p, err := c.preparePuzzle(ctx, runner, args[0], opts)
			if err != nil {
				return err
			}

			var start *minkwitz.Table
			if resume != "" {
				if start, err = loadTableFile(resume, p); err != nil {
					return err
				}
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %s (%s)...", p.Def.Name, plural(opts.Rounds, "round")))
			spinner.Start()
			var (
				table *minkwitz.Table
				res   pipeline.BuildResult
			)
			if start != nil {
				table, res, err = runner.BuildFrom(ctx, p, start, opts)
			} else {
				table, res, err = runner.Build(ctx, p, opts)
			}
			spinner.Stop()

			interrupted := errors.Is(err, context.Canceled)
			if err != nil && !interrupted {
				return err
			}

			if out != "" {
				if err := minkwitz.Save(table, out); err != nil {
					return err
				}
			}
			c.printBuild(p, table, res, out)
			if interrupted {
				printWarning(c.Out, "interrupted; progress is checkpointed")
				return err
			}
			if !res.Full && !res.Exhausted {
				printNextStep(c.Out, "Continue building", "shortword build "+args[0])
			}
			return nil
		},
	}

	bf.register(cmd)
	uf.register(cmd)
	cmd.Flags().StringVar(&resume, "resume", "", "continue the table stored in this file instead of the cache")
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write the table to this file")
	return cmd
}

func (c *CLI) printBuild(p *pipeline.Puzzle, t *minkwitz.Table, res pipeline.BuildResult, out string) {
	verb := "Built"
	if res.Resumed {
		verb = "Extended"
	}
	printSuccess(c.Out, "%s table for %s in %s", verb, p.Def.Name, res.Duration.Round(time.Millisecond))

	st := t.Stats()
	printStats(c.Out, st.Cells, st.MaxWord, res.Resumed && res.Changes == 0)
	printKeyValue(c.Out, "rounds", strconv.Itoa(res.Rounds))
	printKeyValue(c.Out, "processed", strconv.Itoa(t.Processed))
	printKeyValue(c.Out, "changes", strconv.Itoa(res.Changes))
	printKeyValue(c.Out, "limit", strconv.Itoa(res.Limit))
	printKeyValue(c.Out, "rows", joinInts(st.RowLens, " "))
	if p.OrbitSizes != nil {
		printKeyValue(c.Out, "orbits", joinInts(p.OrbitSizes, " "))
	}
	switch {
	case res.Full:
		printDetail(c.Out, "every row covers its orbit")
	case res.Exhausted:
		printDetail(c.Out, "the group has no more elements to process")
	}
	if out != "" {
		printFile(c.Out, out)
	}
}
