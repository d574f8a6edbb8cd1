package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shortword/pkg/minkwitz"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		bf    baseFlags
		table string
	)

	cmd := &cobra.Command{
		Use:   "check <definition>",
		Short: "Verify every table cell against the generators",
		Long: `Replay the word of every table cell and check that it matches the stored
permutation and fixes the base points before its row. Exits non-zero on the
first violation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(&bf, nil)
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

			var t *minkwitz.Table
			if table != "" {
				t, err = loadTableFile(table, p)
			} else {
				t, err = runner.LoadTable(ctx, p)
			}
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			if err := t.Check(p.Gens); err != nil {
				printError(c.Out, "table for %s is inconsistent", p.Def.Name)
				return err
			}
			prog.done("Checked table", "cells", t.Len())

			st := t.Stats()
			printSuccess(c.Out, "%s verified", plural(st.Cells, "cell"))
			printKeyValue(c.Out, "longest", strconv.Itoa(st.MaxWord))
			if st.Cells > 0 {
				printKeyValue(c.Out, "mean", strconv.FormatFloat(float64(st.SumWord)/float64(st.Cells), 'f', 2, 64))
			}
			if p.OrbitSizes != nil && t.Full(p.OrbitSizes) {
				printDetail(c.Out, "table is complete")
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().StringVar(&table, "table", "", "check the table stored in this file instead of the cache")
	return cmd
}
