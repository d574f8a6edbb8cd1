package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/cayley"
	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/pipeline"
	"github.com/matzehuels/shortword/pkg/schreier"
)

// maxBallVertices bounds graph output; larger balls are unreadable.
const maxBallVertices = 2000

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		radius int
		orbit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph <definition>",
		Short: "Draw the Cayley ball or a Schreier tree",
		Long: `Render the ball of the given radius around the identity in the Cayley graph,
or with --orbit the Schreier tree of one point's orbit. The format follows
the output extension: .svg renders with Graphviz, .dot writes the source.`,
		Example: `  shortword graph eightpoint.yaml --radius 2 -o ball.svg
  shortword graph pocket.toml --orbit 0 -o orbit.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := pipeline.LoadDefinition(args[0])
			if err != nil {
				return err
			}
			gens, err := def.GeneratorSet()
			if err != nil {
				return err
			}

			var dot string
			if orbit >= 0 {
				if orbit >= gens.Size() {
					return errs.New(errs.ErrCodeInvalidInput, "orbit point %d out of range [0,%d)", orbit, gens.Size())
				}
				names := make([]string, gens.Len())
				for i, g := range gens.Generators() {
					names[i] = g.Name
				}
				t := schreier.Orbit(orbit, gens.Perms())
				dot = t.ToDOT(names)
				c.Logger.Debug("orbit tree", "point", orbit, "size", t.Len())
			} else {
				g := cayley.Ball(gens, radius)
				if len(g.Vertices) > maxBallVertices {
					return errs.New(errs.ErrCodeInvalidInput,
						"ball of radius %d has %d vertices (max %d); lower --radius", radius, len(g.Vertices), maxBallVertices)
				}
				dot = g.ToDOT(gens)
				c.Logger.Debug("cayley ball", "radius", radius, "vertices", len(g.Vertices), "edges", len(g.Edges))
			}

			data := []byte(dot)
			if strings.EqualFold(filepath.Ext(output), ".svg") {
				if data, err = cayley.RenderSVG(cmd.Context(), dot); err != nil {
					return err
				}
			}
			if output == "" || output == "-" {
				_, err = c.Out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess(c.Out, "Wrote graph")
			printFile(c.Out, output)
			return nil
		},
	}

	cmd.Flags().IntVar(&radius, "radius", 2, "ball radius in moves")
	cmd.Flags().IntVar(&orbit, "orbit", -1, "draw the Schreier tree of this point instead")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg or .dot, default stdout DOT)")
	return cmd
}
