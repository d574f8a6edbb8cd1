package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/schreier"
)

// baseCommand creates the base command.
func (c *CLI) baseCommand() *cobra.Command {
	var (
		bf   baseFlags
		save string
	)

	cmd := &cobra.Command{
		Use:   "base <definition>",
		Short: "Compute a base and the group order for a puzzle",
		Long: `Compute a base of the puzzle group with Schreier-Sims and print it together
with the basic orbit sizes and the group order.`,
		Example: `  shortword base examples/puzzles/pocket.toml
  shortword base pocket.toml --random --seed 7 --save pocket.base`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(&bf, nil)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			p, err := c.preparePuzzle(cmd.Context(), runner, args[0], opts)
			if err != nil {
				return err
			}
			prog.done("Computed base", "rows", len(p.Base))

			printKeyValue(c.Out, "puzzle", p.Def.Name)
			printKeyValue(c.Out, "base", schreier.FormatBase(p.Base))
			if p.OrbitSizes != nil {
				printKeyValue(c.Out, "orbits", joinInts(p.OrbitSizes, " "))
				printKeyValue(c.Out, "order", p.Order.String())
			} else {
				printWarning(c.Out, "base does not cover the group")
			}

			if save != "" {
				if err := schreier.SaveBase(save, p.Base); err != nil {
					return err
				}
				printFile(c.Out, save)
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().StringVar(&save, "save", "", "write the base to a file")
	return cmd
}

// parseBaseFlag reads --base: empty for none, "@path" for a base file,
// otherwise a '.'-joined list.
func parseBaseFlag(s string) ([]int, error) {
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "@"):
		return schreier.LoadBase(s[1:])
	default:
		return schreier.ParseBase(s)
	}
}

func joinInts(xs []int, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, sep)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
