package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bawdo/typeq/nodes"
	"github.com/bawdo/typeq/schema"
)

var (
	renderAll      bool
	renderDialects []string
)

var renderCmd = &cobra.Command{
	Use:   "render [sample...]",
	Short: "Render sample statements for one or more dialects",
	Long: `Render the named sample statements against the demo catalog.

With --all every sample is rendered. Without --on the statements are rendered
for the configured dialect; --on accepts several dialects, which are rendered
side by side.`,
	Example: `  typeq render select join
  typeq render --all --on postgres,mysql,sqlite`,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return sampleNames(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var chosen []sample
		if renderAll {
			chosen = samples
		} else {
			if len(args) == 0 {
				return fmt.Errorf("name a sample or pass --all (samples: %s)", strings.Join(sampleNames(), ", "))
			}
			for _, name := range args {
				s, err := findSample(name)
				if err != nil {
					return err
				}
				chosen = append(chosen, s)
			}
		}
		dialects := renderDialects
		if len(dialects) == 0 {
			dialects = []string{cfg.Dialect}
		}
		return renderSamples(cmd.OutOrStdout(), cfg, dialects, chosen)
	},
}

func init() {
	renderCmd.Flags().BoolVarP(&renderAll, "all", "a", false, "render every sample")
	renderCmd.Flags().StringSliceVar(&renderDialects, "on", nil, "dialects to render for (default: the configured dialect)")
}

// renderSamples renders every sample for every dialect concurrently and
// writes the results grouped by sample, in the order requested.
func renderSamples(w io.Writer, base *Config, dialects []string, chosen []sample) error {
	dbs := make([]*schema.Database, len(dialects))
	logger := newLogger()
	for i, name := range dialects {
		c := *base
		c.Dialect = name
		db, err := c.Database(logger)
		if err != nil {
			return configError("render", err)
		}
		dbs[i] = db
	}

	out := make([][]string, len(chosen))
	var g errgroup.Group
	for i, s := range chosen {
		out[i] = make([]string, len(dbs))
		for j, db := range dbs {
			g.Go(func() error {
				text, err := renderSample(db, s)
				if err != nil {
					return fmt.Errorf("%s on %s: %w", s.name, db.Dialect().Name(), err)
				}
				out[i][j] = text
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, s := range chosen {
		fmt.Fprintf(w, "-- %s: %s\n", s.name, s.short)
		for j, db := range dbs {
			if len(dbs) > 1 {
				fmt.Fprintf(w, "[%s]\n", db.Dialect().Name())
			}
			fmt.Fprint(w, out[i][j])
		}
		fmt.Fprintln(w)
	}
	return nil
}

// renderSample builds and renders s, turning builder panics into errors.
func renderSample(db *schema.Database, s sample) (text string, err error) {
	defer nodes.Catch(&err)
	rendered, err := s.build(db)
	if err != nil {
		return "", err
	}
	return formatRendered(rendered), nil
}
