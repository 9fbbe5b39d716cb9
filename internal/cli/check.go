package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tether/pkg/constraint"
	errs "github.com/matzehuels/tether/pkg/errors"
	pkgio "github.com/matzehuels/tether/pkg/io"
)

// checkCommand creates the check command for inspecting graph structure.
func (c *CLI) checkCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [scene.json|scene.toml]",
		Short: "Report components and over-constrained objects",
		Long: `Report the structure of a scene's constraint graph without solving it.

Lists the connected components (groups of objects linked by constraints),
objects flagged as over-constrained, and constraints that reference objects
missing from the scene (the solver skips those).

With --strict the command fails when any object is over-constrained or any
constraint is dangling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on over-constrained objects or dangling constraints")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, strict bool) error {
	prog := newProgress(loggerFromContext(ctx))

	scene, err := pkgio.Import(input)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	g, err := scene.Graph()
	if err != nil {
		return fmt.Errorf("load constraints: %w", err)
	}
	if err := g.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "constraint graph")
	}

	positions := scene.Positions()
	components := g.ConnectedComponents()
	over := g.OverConstrained(positions)
	dangling := danglingConstraints(g, positions)
	prog.done("Checked scene", "constraints", g.Len(), "components", len(components))

	printKeyValue("Constraints", StyleNumber.Render(fmt.Sprint(g.Len())))
	printKeyValue("Objects", StyleNumber.Render(fmt.Sprint(len(scene.Objects))))
	printKeyValue("Components", StyleNumber.Render(fmt.Sprint(len(components))))
	for i, comp := range components {
		printDetail("%d: %s", i+1, joinIDs(comp))
	}

	if len(over) > 0 {
		printWarning("Over-constrained: %s", joinIDs(over))
	}
	if len(dangling) > 0 {
		printWarning("Constraints referencing missing objects: %s", joinIDs(dangling))
	}
	if len(over) == 0 && len(dangling) == 0 {
		printSuccess("No structural problems")
		return nil
	}

	if strict {
		printError("Check failed")
		return errs.New(errs.ErrCodeInvalidInput, "%d over-constrained objects, %d dangling constraints", len(over), len(dangling))
	}
	return nil
}

// danglingConstraints returns the ids of constraints with an endpoint that
// has no position, in insertion order.
func danglingConstraints(g *constraint.Graph, positions map[constraint.ObjectID]constraint.Point) []string {
	var ids []string
	for _, c := range g.Constraints() {
		_, okA := positions[c.A.Object]
		_, okB := positions[c.B.Object]
		if !okA || !okB {
			ids = append(ids, c.ID)
		}
	}
	return slices.Clip(ids)
}
