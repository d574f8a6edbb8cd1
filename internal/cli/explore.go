package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/cayley"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		strategy string
		limit    int
		depth    int
		fpRate   float64
		words    bool
	)

	cmd := &cobra.Command{
		Use:   "explore <definition>",
		Short: "Enumerate group elements in shortest-word order",
		Long: `Walk the Cayley graph of the puzzle group from the identity and report how
many distinct elements each strategy produces. With --words the elements are
printed as move sequences.`,
		Example: `  shortword explore eightpoint.yaml --limit 360
  shortword explore pocket.toml --strategy bounded --limit 1000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateStrategy(strategy); err != nil {
				return err
			}
			def, err := pipeline.LoadDefinition(args[0])
			if err != nil {
				return err
			}
			gens, err := def.GeneratorSet()
			if err != nil {
				return err
			}

			var ex cayley.Explorer
			switch strategy {
			case pipeline.StrategyBounded:
				ex = cayley.NewBounded(gens, cayley.BoundedCapacity(gens, limit), fpRate)
			case pipeline.StrategyDepth:
				ex = cayley.NewDepthLimited(gens, depth)
			default:
				ex = cayley.NewBFS(gens)
			}

			prog := newProgress(c.Logger)
			maxLen := 0
			for ex.Produced() < limit {
				e, ok := ex.Next()
				if !ok {
					break
				}
				maxLen = max(maxLen, e.Len())
				if words {
					w := gens.Render(e.Word)
					if w == "" {
						w = "(identity)"
					}
					fmt.Fprintln(c.Out, w)
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
			}
			prog.done("Explored group", "elements", ex.Produced())

			if !words {
				printKeyValue(c.Out, "strategy", strategy)
				printKeyValue(c.Out, "elements", strconv.Itoa(ex.Produced()))
				printKeyValue(c.Out, "radius", strconv.Itoa(maxLen))
				if bfs, ok := ex.(*cayley.BFS); ok {
					printKeyValue(c.Out, "frontier", strconv.Itoa(bfs.Frontier()))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", pipeline.StrategyBFS, "bfs, bounded, or depth")
	cmd.Flags().IntVar(&limit, "limit", 10_000, "stop after this many elements")
	cmd.Flags().IntVar(&depth, "depth", 8, "maximum word length for --strategy depth")
	cmd.Flags().Float64Var(&fpRate, "fp-rate", cayley.DefaultFalsePositiveRate, "Bloom filter false-positive rate for --strategy bounded")
	cmd.Flags().BoolVar(&words, "words", false, "print every element as a move sequence")
	return cmd
}
