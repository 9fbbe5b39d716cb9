// Package render converts rendered diagrams between output formats.
//
// The [dot] subpackage turns a constraint graph into Graphviz DOT and SVG.
// [ToPDF] and [ToPNG] convert that SVG with the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := dot.RenderSVG(dot.ToDOT(g, dot.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [dot]: github.com/matzehuels/tether/pkg/render/dot
package render
