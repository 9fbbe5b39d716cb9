package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tether/pkg/constraint"
	pkgio "github.com/matzehuels/tether/pkg/io"
	"github.com/matzehuels/tether/pkg/pipeline"
)

// solveFlags holds the solver flags shared by solve and render.
type solveFlags struct {
	opts    pipeline.Options
	noCache bool
}

func (f *solveFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.opts.MaxIterations, "max-iterations", 0, "relaxation pass budget (default 5, or 10 with --anchored)")
	cmd.Flags().Float64Var(&f.opts.Tolerance, "tolerance", 0, "largest remaining error counted as converged (default 1)")
	cmd.Flags().BoolVar(&f.opts.Anchored, "anchored", false, "measure between anchor points using the scene's anchor offsets")
	cmd.Flags().StringSliceVar(&f.opts.Pin, "pin", nil, "extra object ids to hold fixed (repeatable)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached results")
}

// resolve fills options the user did not set on the command line from the
// config file.
func (f *solveFlags) resolve(cmd *cobra.Command, cfg *Config) pipeline.Options {
	opts := f.opts
	if !cmd.Flags().Changed("max-iterations") {
		opts.MaxIterations = cfg.Solver.MaxIterations
	}
	if !cmd.Flags().Changed("tolerance") {
		opts.Tolerance = cfg.Solver.Tolerance
	}
	if !cmd.Flags().Changed("anchored") {
		opts.Anchored = cfg.Solver.Anchored
	}
	return opts
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags  solveFlags
		output string
		report string
	)

	cmd := &cobra.Command{
		Use:   "solve [scene.json|scene.toml]",
		Short: "Relax a scene so every constraint sits at its target distance",
		Long: `Relax a scene so every constraint sits at its target distance.

Unpinned objects are nudged along each constraint in turn until the largest
remaining error is within tolerance or the pass budget runs out. The adjusted
scene is written next to the input (scene.solved.json) unless -o is given.

A scene that does not converge is still written; the command warns and
reports the remaining error.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.cfg())
			return c.runSolve(cmd.Context(), args[0], opts, flags.noCache, output, report)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output scene file (default: <input>.solved.<ext>)")
	cmd.Flags().BoolVar(&flags.opts.NoApply, "dry-run", false, "report deltas without writing the scene")
	cmd.Flags().StringVar(&report, "report", "", "write the solver report as JSON to this file")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, input string, opts pipeline.Options, noCache bool, output, report string) error {
	scene, err := pkgio.Import(input)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, scene, opts)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	solve := res.Solve
	if solve.Converged {
		printSuccess("Converged after %s", StyleNumber.Render(fmt.Sprint(solve.Iterations)))
	} else {
		printWarning("Did not converge: max error %.3f after %d passes", solve.MaxError, solve.Iterations)
	}
	if len(solve.OverConstrained) > 0 {
		printWarning("Over-constrained: %s", joinIDs(solve.OverConstrained))
	}

	if len(solve.Deltas) > 0 {
		fmt.Println(deltaTable(solve, solvedPositions(scene, solve)))
	} else {
		printInfo("No objects moved")
	}
	fmt.Println(statsLine(res.Graph.Len(), len(scene.Objects), solve.Iterations, res.Cached))

	if report != "" {
		if err := writeReport(report, solve); err != nil {
			return err
		}
		printFile(report)
	}

	if opts.NoApply {
		return nil
	}
	if output == "" {
		output = outputPath(input, ".solved", filepath.Ext(input))
	}
	if err := pkgio.Export(res.Scene, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printFile(output)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// solvedPositions returns the positions after applying res to scene. The
// result scene is unchanged on dry runs, so the table cannot read from it.
func solvedPositions(scene *pkgio.Scene, res *constraint.Result) map[constraint.ObjectID]constraint.Point {
	return scene.Apply(res.Deltas).Positions()
}

func writeReport(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func joinIDs[T ~string](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
