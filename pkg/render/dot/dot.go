package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tether/pkg/constraint"
)

// Options configures constraint graph rendering.
type Options struct {
	// Positions places objects at their reference positions. Objects without
	// a position are left to the layout engine.
	Positions map[constraint.ObjectID]constraint.Point

	// Pinned objects are drawn with a double outline.
	Pinned map[constraint.ObjectID]bool

	// OverConstrained objects are highlighted.
	OverConstrained []constraint.ObjectID

	// HideInvisible drops hidden constraints instead of drawing them dashed.
	HideInvisible bool
}

// ToDOT converts a constraint graph to Graphviz DOT. Objects become boxes and
// constraints become undirected edges labelled with their target distance.
//
// Positions are emitted as pinned neato pos hints with the y axis flipped, so
// a scene in screen coordinates renders the right way up.
func ToDOT(g *constraint.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#555555\"];\n")
	buf.WriteString("\n")

	over := make(map[constraint.ObjectID]bool, len(opts.OverConstrained))
	for _, id := range opts.OverConstrained {
		over[id] = true
	}

	for _, id := range objects(g, opts.Positions) {
		attrs := nodeAttrs(id, opts, over[id])
		fmt.Fprintf(&buf, "  %q [%s];\n", string(id), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Constraints() {
		if !c.Visible && opts.HideInvisible {
			continue
		}
		attrs := []string{
			fmt.Sprintf("label=%q", strconv.FormatFloat(c.TargetDistance, 'g', -1, 64)),
			fmt.Sprintf("tooltip=%q", c.A.String()+" - "+c.B.String()),
		}
		if !c.Visible {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", string(c.A.Object), string(c.B.Object), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func objects(g *constraint.Graph, positions map[constraint.ObjectID]constraint.Point) []constraint.ObjectID {
	seen := make(map[constraint.ObjectID]struct{})
	for _, id := range g.Objects() {
		seen[id] = struct{}{}
	}
	for id := range positions {
		seen[id] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func nodeAttrs(id constraint.ObjectID, opts Options, over bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", string(id))}
	if p, ok := opts.Positions[id]; ok {
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(p.X), fmtCoord(-p.Y)))
	}
	if opts.Pinned[id] {
		attrs = append(attrs, "peripheries=2")
	}
	if over {
		attrs = append(attrs, "fillcolor=\"#ffd6d6\"", "color=\"#c0392b\"")
	}
	return attrs
}

func fmtCoord(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG with the neato engine, honouring
// pinned pos hints.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
