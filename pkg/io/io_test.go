package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/tether/pkg/constraint"
	errs "github.com/matzehuels/tether/pkg/errors"
)

const sceneJSON = `{
  "objects": [
    {"id": "A", "x": 0, "y": 0, "pinned": true},
    {"id": "B", "x": 50, "y": 0,
     "anchors": [{"type": "edge_left", "dx": -10, "dy": 0}]}
  ],
  "constraints": [
    {"id": "c1",
     "anchor_a": {"object_id": "A", "anchor_type": "center", "anchor_index": 0},
     "anchor_b": {"object_id": "B", "anchor_type": "edge_left", "anchor_index": 0},
     "target_distance": 100}
  ]
}`

const sceneTOML = `
[[objects]]
id = "A"
x = 0.0
y = 0.0
pinned = true

[[objects]]
id = "B"
x = 50.0
y = 0.0

  [[objects.anchors]]
  type = "edge_left"
  dx = -10.0
  dy = 0.0

[[constraints]]
id = "c1"
target_distance = 100.0

  [constraints.anchor_a]
  object_id = "A"
  anchor_type = "center"
  anchor_index = 0

  [constraints.anchor_b]
  object_id = "B"
  anchor_type = "edge_left"
  anchor_index = 0
`

func TestReadJSON(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(sceneJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	checkScene(t, s)
}

func TestReadTOML(t *testing.T) {
	s, err := ReadTOML(strings.NewReader(sceneTOML))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	checkScene(t, s)
}

func checkScene(t *testing.T, s *Scene) {
	t.Helper()

	pos := s.Positions()
	if pos["B"] != (constraint.Point{X: 50}) {
		t.Errorf("Positions()[B] = %v", pos["B"])
	}
	if pinned := s.Pinned(); !pinned["A"] || pinned["B"] {
		t.Errorf("Pinned() = %v, want only A", pinned)
	}

	ref := constraint.AnchorRef{Object: "B", Type: constraint.EdgeLeft}
	if off := s.Offsets()[ref]; off != (constraint.Point{X: -10}) {
		t.Errorf("Offsets()[%v] = %v", ref, off)
	}

	g, err := s.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	c, ok := g.Constraint("c1")
	if !ok {
		t.Fatal("constraint c1 missing")
	}
	if c.TargetDistance != 100 || !c.Visible || c.B != ref {
		t.Errorf("c1 = %+v", *c)
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errs.Code
	}{
		{"malformed", `{"objects": [`, errs.ErrCodeInvalidInput},
		{"duplicate object", `{"objects": [{"id": "a"}, {"id": "a"}]}`, errs.ErrCodeInvalidInput},
		{"empty object id", `{"objects": [{"id": ""}]}`, errs.ErrCodeInvalidInput},
		{"unknown anchor", `{"objects": [{"id": "a", "anchors": [{"type": "spline"}]}]}`, errs.ErrCodeInvalidAnchorType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errs.Is(err, tt.code) {
				t.Errorf("ReadJSON() code = %v, want %v (err: %v)", errs.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestScene_GraphRejectsBadRecord(t *testing.T) {
	input := `{"objects": [], "constraints": [
	  {"id": "c", "anchor_a": {"object_id": "a", "anchor_type": "spline"},
	   "anchor_b": {"object_id": "b", "anchor_type": "center"}, "target_distance": 1}]}`
	s, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if _, err := s.Graph(); !errs.Is(err, errs.ErrCodeInvalidAnchorType) {
		t.Errorf("Graph() error = %v, want INVALID_ANCHOR_TYPE", err)
	}
}

func TestApply(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(sceneJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	moved := s.Apply(map[constraint.ObjectID]constraint.Point{
		"B":     {X: 60},
		"ghost": {X: 1},
	})

	if got := moved.Positions()["B"]; got != (constraint.Point{X: 110}) {
		t.Errorf("moved B = %v, want (110, 0)", got)
	}
	if got := s.Positions()["B"]; got != (constraint.Point{X: 50}) {
		t.Errorf("Apply mutated the original: B = %v", got)
	}
	if len(moved.Objects) != 2 {
		t.Errorf("Apply added objects: %d", len(moved.Objects))
	}
}

func TestClone_CopiesRecordPointers(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(sceneJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	visible := true
	s.Constraints[0].Visible = &visible

	c := s.Clone()
	*c.Constraints[0].TargetDistance = 5
	*c.Constraints[0].Visible = false
	c.Objects[1].Anchors[0].DX = 99

	if got := *s.Constraints[0].TargetDistance; got != 100 {
		t.Errorf("original target_distance = %v, want 100", got)
	}
	if !*s.Constraints[0].Visible {
		t.Error("original visible flag changed through the clone")
	}
	if got := s.Objects[1].Anchors[0].DX; got != -10 {
		t.Errorf("original anchor dx = %v, want -10", got)
	}
}

func TestRoundTrip(t *testing.T) {
	orig, err := ReadJSON(strings.NewReader(sceneJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	writers := map[string]struct {
		write func(*Scene, *bytes.Buffer) error
		read  func(*bytes.Buffer) (*Scene, error)
	}{
		"json": {
			func(s *Scene, b *bytes.Buffer) error { return WriteJSON(s, b) },
			func(b *bytes.Buffer) (*Scene, error) { return ReadJSON(b) },
		},
		"toml": {
			func(s *Scene, b *bytes.Buffer) error { return WriteTOML(s, b) },
			func(b *bytes.Buffer) (*Scene, error) { return ReadTOML(b) },
		},
	}
	for name, rw := range writers {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := rw.write(orig, &buf); err != nil {
				t.Fatalf("write: %v", err)
			}
			back, err := rw.read(&buf)
			if err != nil {
				t.Fatalf("read: %v\n%s", err, buf.String())
			}
			if !reflect.DeepEqual(back.Positions(), orig.Positions()) {
				t.Errorf("positions = %v, want %v", back.Positions(), orig.Positions())
			}
			if !reflect.DeepEqual(back.Offsets(), orig.Offsets()) {
				t.Errorf("offsets = %v, want %v", back.Offsets(), orig.Offsets())
			}
			g1, _ := orig.Graph()
			g2, err := back.Graph()
			if err != nil {
				t.Fatalf("Graph: %v", err)
			}
			if !reflect.DeepEqual(g1.ToList(), g2.ToList()) {
				t.Errorf("constraints = %v, want %v", g2.ToList(), g1.ToList())
			}
		})
	}
}

func TestWriteJSON_EmptyScene(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&Scene{}, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"objects": []`) {
		t.Errorf("empty scene should encode empty arrays, got %s", buf.String())
	}
}

func TestImportExport(t *testing.T) {
	orig, err := ReadJSON(strings.NewReader(sceneJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	dir := t.TempDir()

	for _, name := range []string{"scene.json", "scene.TOML"} {
		path := filepath.Join(dir, name)
		if err := Export(orig, path); err != nil {
			t.Fatalf("Export(%s): %v", name, err)
		}
		back, err := Import(path)
		if err != nil {
			t.Fatalf("Import(%s): %v", name, err)
		}
		if len(back.Objects) != 2 || len(back.Constraints) != 1 {
			t.Errorf("%s: got %d objects, %d constraints", name, len(back.Objects), len(back.Constraints))
		}
	}

	if _, err := Import(filepath.Join(dir, "scene.yaml")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Import(.yaml) error = %v, want INVALID_FORMAT", err)
	}
	if _, err := Import(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestSceneFromGraph(t *testing.T) {
	g := constraint.New()
	a := constraint.AnchorRef{Object: "b", Type: constraint.Corner, Index: 1}
	g.AddConstraint(constraint.AnchorRef{Object: "a", Type: constraint.Center}, a, 30, constraint.WithID("c"))

	s := SceneFromGraph(g,
		map[constraint.ObjectID]constraint.Point{"a": {X: 1, Y: 2}, "z": {X: 9}},
		map[constraint.ObjectID]bool{"a": true},
		map[constraint.AnchorRef]constraint.Point{
			a: {X: 3, Y: 4},
			{Object: "b", Type: constraint.Center}: {},
		},
	)

	var ids []string
	for _, o := range s.Objects {
		ids = append(ids, o.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "z"}) {
		t.Fatalf("object ids = %v", ids)
	}
	if !s.Objects[0].Pinned || s.Objects[1].Pinned {
		t.Error("pinned flags not carried over")
	}
	if got := s.Objects[1].Anchors; len(got) != 2 || got[0].Type != "center" || got[1].Type != "corner" {
		t.Errorf("b anchors = %+v", got)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if !reflect.DeepEqual(s.Offsets()[a], constraint.Point{X: 3, Y: 4}) {
		t.Errorf("Offsets()[%v] = %v", a, s.Offsets()[a])
	}
	if len(s.Constraints) != 1 || s.Constraints[0].ID != "c" {
		t.Errorf("constraints = %+v", s.Constraints)
	}
}
