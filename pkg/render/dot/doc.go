// Package dot renders constraint graphs as Graphviz diagrams.
//
// # Usage
//
//	src := dot.ToDOT(g, dot.Options{
//	    Positions:       scene.Positions(),
//	    Pinned:          scene.Pinned(),
//	    OverConstrained: g.OverConstrained(nil),
//	})
//	svg, err := dot.RenderSVG(src)
//
// Objects are boxes placed at their reference positions; pinned objects get
// a double outline and over-constrained objects are filled red. Each
// constraint is an undirected edge labelled with its target distance.
// Hidden constraints are dashed, or dropped with [Options.HideInvisible].
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz] for in-process rendering
// with the neato engine. PNG and PDF output goes through the parent render
// package, which needs librsvg.
package dot
