package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/tether/pkg/io"
	"github.com/matzehuels/tether/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path (multiple)
	formats []string // dot, svg, png, pdf
	solve   bool     // relax the scene before drawing it
	render  pipeline.RenderOptions
}

// renderCommand creates the render command for drawing constraint diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      solveFlags
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [scene.json|scene.toml]",
		Short: "Draw a scene's constraint graph",
		Long: `Draw a scene's constraint graph with objects at their scene positions.

Pinned objects get a double outline and over-constrained objects are filled
red. Hidden constraints are drawn dashed unless --hide-invisible is set.

By default the scene is drawn as stored. Pass --solve to relax it first.
PNG and PDF output require rsvg-convert (librsvg) on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg()
			if formatsStr == "" {
				formatsStr = cfg.Render.Format
			}
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("hide-invisible") {
				opts.render.HideInvisible = cfg.Render.HideInvisible
			}
			solveOpts := flags.resolve(cmd, cfg)
			solveOpts.NoApply = !opts.solve
			return c.runRender(cmd.Context(), args[0], solveOpts, flags.noCache, &opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot, svg (default), png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.solve, "solve", false, "solve the scene before drawing it")
	cmd.Flags().BoolVar(&opts.render.HideInvisible, "hide-invisible", false, "omit hidden constraints")
	cmd.Flags().Float64Var(&opts.render.Scale, "scale", 0, "PNG scale factor (default 2)")

	return cmd
}

// parseFormats splits the --format flag, trimming blanks and duplicates.
func parseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return out
}

func (c *CLI) runRender(ctx context.Context, input string, solveOpts pipeline.Options, noCache bool, opts *renderOpts) error {
	scene, err := pkgio.Import(input)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, scene, solveOpts)
	if err != nil {
		return err
	}

	var paths []string
	for _, format := range opts.formats {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		prog := newProgress(c.Logger)
		data, err := runner.Render(ctx, res, format, opts.render)
		if err != nil {
			return err
		}

		path := renderPath(input, opts.output, format, len(opts.formats))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		prog.done("Rendered "+format, "bytes", len(data))
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", StyleNumber.Render(fmt.Sprintf("%d file(s)", len(paths))))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// renderPath picks the output file for one format. A single format with an
// explicit -o writes exactly there; otherwise the format replaces the
// extension of -o, or of the input when -o is empty.
func renderPath(input, output, format string, count int) string {
	switch {
	case output != "" && count == 1:
		return output
	case output != "":
		return outputPath(output, "", "."+format)
	default:
		return outputPath(input, "", "."+format)
	}
}
