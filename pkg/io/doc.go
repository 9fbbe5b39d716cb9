// Package io reads and writes tether scene files in JSON and TOML.
//
// # Overview
//
// A scene is a small stand-in for the application that owns object
// geometry: a list of objects with their current reference positions,
// pinned flags and anchor offsets, plus the constraint record list produced
// by [constraint.Graph.ToList]. The format is designed for:
//
//   - Driving the solver from the command line and from test fixtures
//   - Round-trip preservation: load, solve, apply, write, and reload
//   - Embedding the constraint list alongside unrelated object data
//
// # JSON Format
//
//	{
//	  "objects": [
//	    {"id": "A", "x": 0, "y": 0, "pinned": true},
//	    {"id": "B", "x": 50, "y": 0,
//	     "anchors": [{"type": "edge_left", "index": 0, "dx": -10, "dy": 0}]}
//	  ],
//	  "constraints": [
//	    {"id": "c1",
//	     "anchor_a": {"object_id": "A", "anchor_type": "center", "anchor_index": 0},
//	     "anchor_b": {"object_id": "B", "anchor_type": "edge_left", "anchor_index": 0},
//	     "target_distance": 100, "visible": true}
//	  ]
//	}
//
// The TOML form uses the same field names with [[objects]],
// [[objects.anchors]] and [[constraints]] tables.
//
// # Import
//
// Use [Import] to read a file, dispatching on its extension, or [ReadJSON] /
// [ReadTOML] to read from any io.Reader. Imports validate object ids and
// anchor types; constraint records are validated when [Scene.Graph] builds
// the graph, so a bad record fails that call as a whole.
//
// # Export
//
// Use [Export], [WriteJSON] or [WriteTOML]. After solving, [Scene.Apply]
// returns a copy of the scene with the solver deltas applied, ready to be
// written back.
//
// [constraint.Graph.ToList]: github.com/matzehuels/tether/pkg/constraint.Graph.ToList
package io
