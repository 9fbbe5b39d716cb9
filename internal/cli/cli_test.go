package cli

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tether/pkg/constraint"
	errs "github.com/matzehuels/tether/pkg/errors"
	pkgio "github.com/matzehuels/tether/pkg/io"
	"github.com/matzehuels/tether/pkg/observability"
	"github.com/matzehuels/tether/pkg/pipeline"
)

// twoBoxesJSON has a pinned left box and a right box 40 units away that
// should sit 100 units away.
const twoBoxesJSON = `{
  "objects": [
    {"id": "left", "x": 0, "y": 0, "pinned": true},
    {"id": "right", "x": 40, "y": 0}
  ],
  "constraints": [
    {"id": "c1",
     "anchor_a": {"object_id": "left", "anchor_type": "center", "anchor_index": 0},
     "anchor_b": {"object_id": "right", "anchor_type": "center", "anchor_index": 0},
     "target_distance": 100}
  ]
}`

// isolate points the cache and config directories at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func objectAt(t *testing.T, s *pkgio.Scene, id string) pkgio.Object {
	t.Helper()
	for _, o := range s.Objects {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("object %q not in scene", id)
	return pkgio.Object{}
}

func TestSolveCommand(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	report := filepath.Join(dir, "report.json")
	writeFile(t, input, twoBoxesJSON)

	if err := execute(t, "solve", input, "--report", report); err != nil {
		t.Fatalf("solve: %v", err)
	}

	solved, err := pkgio.Import(filepath.Join(dir, "scene.solved.json"))
	if err != nil {
		t.Fatalf("read solved scene: %v", err)
	}
	if got := objectAt(t, solved, "right").X; math.Abs(got-100) > 1e-9 {
		t.Errorf("right.x = %v, want 100", got)
	}
	if got := objectAt(t, solved, "left").X; got != 0 {
		t.Errorf("pinned left moved to x=%v", got)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	var res constraint.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !res.Converged {
		t.Errorf("report converged = false")
	}
	if d := res.Deltas["right"]; math.Abs(d.X-60) > 1e-9 {
		t.Errorf("right delta = %+v, want x=60", d)
	}
}

func TestSolveCommand_DryRun(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	writeFile(t, input, twoBoxesJSON)

	if err := execute(t, "solve", input, "--dry-run", "--no-cache"); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "scene.solved.json")); !os.IsNotExist(err) {
		t.Errorf("dry run wrote an output scene")
	}
}

func TestDeltaTable_DryRunShowsSolvedPositions(t *testing.T) {
	scene, err := pkgio.ReadJSON(strings.NewReader(twoBoxesJSON))
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	res, err := runner.Execute(context.Background(), scene, pipeline.Options{NoApply: true})
	if err != nil {
		t.Fatal(err)
	}

	out := deltaTable(res.Solve, solvedPositions(scene, res.Solve))
	if !strings.Contains(out, "60.00") || !strings.Contains(out, "100.00") {
		t.Errorf("dry-run table should show delta 60 and new x 100:\n%s", out)
	}
	if strings.Contains(out, "40.00") {
		t.Errorf("dry-run table shows the stored position:\n%s", out)
	}
	if got := objectAt(t, scene, "right").X; got != 40 {
		t.Errorf("input scene modified: right.x = %v", got)
	}
}

func TestSolveCommand_Output(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	output := filepath.Join(dir, "out.toml")
	writeFile(t, input, twoBoxesJSON)

	if err := execute(t, "solve", input, "-o", output); err != nil {
		t.Fatalf("solve: %v", err)
	}
	solved, err := pkgio.ImportTOML(output)
	if err != nil {
		t.Fatalf("read TOML output: %v", err)
	}
	if got := objectAt(t, solved, "right").X; math.Abs(got-100) > 1e-9 {
		t.Errorf("right.x = %v, want 100", got)
	}
}

func TestSolveCommand_Errors(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	writeFile(t, input, twoBoxesJSON)

	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"missing file", []string{"solve", filepath.Join(dir, "nope.json")}, errs.ErrCodeFileNotFound},
		{"unknown pin", []string{"solve", input, "--pin", "ghost"}, errs.ErrCodeNotFound},
		{"negative tolerance", []string{"solve", input, "--tolerance=-1"}, errs.ErrCodeInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestSolveFlagsResolve(t *testing.T) {
	cfg := defaultConfig()
	cfg.Solver = SolverConfig{MaxIterations: 7, Tolerance: 2, Anchored: true}

	var flags solveFlags
	cmd := &cobra.Command{Use: "solve"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--tolerance", "0.5"}); err != nil {
		t.Fatal(err)
	}

	opts := flags.resolve(cmd, cfg)
	if opts.Tolerance != 0.5 {
		t.Errorf("Tolerance = %v, want flag value 0.5", opts.Tolerance)
	}
	if opts.MaxIterations != 7 || !opts.Anchored {
		t.Errorf("config values not applied: %+v", opts)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := isolate(t)
	clean := filepath.Join(dir, "clean.json")
	writeFile(t, clean, twoBoxesJSON)

	dangling := filepath.Join(dir, "dangling.json")
	writeFile(t, dangling, strings.Replace(twoBoxesJSON, `"object_id": "right"`, `"object_id": "ghost"`, 1))

	if err := execute(t, "check", clean, "--strict"); err != nil {
		t.Errorf("strict check of clean scene: %v", err)
	}
	if err := execute(t, "check", dangling); err != nil {
		t.Errorf("non-strict check should pass: %v", err)
	}
	if err := execute(t, "check", dangling, "--strict"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("strict check error = %v, want INVALID_INPUT", err)
	}
}

func TestDanglingConstraints(t *testing.T) {
	g := constraint.New()
	g.AddConstraint(constraint.AnchorRef{Object: "a"}, constraint.AnchorRef{Object: "b"}, 10, constraint.WithID("ok"))
	g.AddConstraint(constraint.AnchorRef{Object: "a"}, constraint.AnchorRef{Object: "z"}, 10, constraint.WithID("bad"))

	positions := map[constraint.ObjectID]constraint.Point{"a": {}, "b": {X: 10}}
	got := danglingConstraints(g, positions)
	if len(got) != 1 || got[0] != "bad" {
		t.Errorf("danglingConstraints = %v, want [bad]", got)
	}
}

func TestRenderCommand_DOT(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	writeFile(t, input, twoBoxesJSON)

	if err := execute(t, "render", input, "-f", "dot"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "scene.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"right" [label="right", pos="40,0!"]`) {
		t.Errorf("unsolved render should keep stored positions:\n%s", data)
	}

	solved := filepath.Join(dir, "solved.dot")
	if err := execute(t, "render", input, "-f", "DOT", "--solve", "-o", solved); err != nil {
		t.Fatalf("render --solve: %v", err)
	}
	data, err = os.ReadFile(solved)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"right" [label="right", pos="100,0!"]`) {
		t.Errorf("solved render should use relaxed positions:\n%s", data)
	}
}

func TestRenderCommand_InvalidFormat(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	writeFile(t, input, twoBoxesJSON)

	err := execute(t, "render", input, "-f", "dot,gif")
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "scene.dot")); !os.IsNotExist(statErr) {
		t.Errorf("no file should be written when a format is invalid")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"svg, PNG,svg", []string{"svg", "png"}},
		{" , ", []string{"svg"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderPath(t *testing.T) {
	tests := []struct {
		output, format string
		count          int
		want           string
	}{
		{"", "svg", 1, "scenes/a.svg"},
		{"", "png", 2, "scenes/a.png"},
		{"out/diagram.svg", "svg", 1, "out/diagram.svg"},
		{"out/diagram.svg", "pdf", 2, "out/diagram.pdf"},
	}

	for _, tt := range tests {
		if got := renderPath("scenes/a.json", tt.output, tt.format, tt.count); got != tt.want {
			t.Errorf("renderPath(%q, %q, %d) = %q, want %q", tt.output, tt.format, tt.count, got, tt.want)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	writeFile(t, input, twoBoxesJSON)

	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("clear empty cache: %v", err)
	}
	if err := execute(t, "solve", input); err != nil {
		t.Fatal(err)
	}

	cacheRoot := filepath.Join(dir, "cache", appName)
	entries, _ := filepath.Glob(filepath.Join(cacheRoot, "*", "*.json"))
	if len(entries) != 1 {
		t.Fatalf("cache entries after solve = %d, want 1", len(entries))
	}

	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ = filepath.Glob(filepath.Join(cacheRoot, "*", "*.json"))
	if len(entries) != 0 {
		t.Errorf("cache entries after clear = %d, want 0", len(entries))
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("dir/scene.json", ".solved", ".json"); got != "dir/scene.solved.json" {
		t.Errorf("outputPath = %q", got)
	}
	if got := outputPath("scene", ".solved", ".toml"); got != "scene.solved.toml" {
		t.Errorf("outputPath without extension = %q", got)
	}
}

func mkdirAll(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestExampleScenes(t *testing.T) {
	scenes, err := filepath.Glob(filepath.Join("..", "..", "examples", "scenes", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(scenes) == 0 {
		t.Skip("no example scenes")
	}

	for _, scene := range scenes {
		t.Run(filepath.Base(scene), func(t *testing.T) {
			isolate(t)
			if err := execute(t, "check", scene); err != nil {
				t.Errorf("check: %v", err)
			}
			if err := execute(t, "solve", scene, "--dry-run", "--no-cache"); err != nil {
				t.Errorf("solve: %v", err)
			}
		})
	}
}

func TestMetricsFile(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	metrics := filepath.Join(dir, "tether.prom")
	writeFile(t, input, twoBoxesJSON)

	c := New(io.Discard, log.InfoLevel)
	c.InstallHooks()
	t.Cleanup(observability.Reset)

	root := c.RootCommand()
	root.SetArgs([]string{"solve", input, "--dry-run", "--metrics-file", metrics})
	if err := root.Execute(); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if err := c.WriteMetrics(); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}

	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	for _, want := range []string{
		`tether_solves_total{cached="false",outcome="converged"} 1`,
		`tether_cache_requests_total{result="miss",type="solve"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics missing %q:\n%s", want, data)
		}
	}
}

func TestMetricsFile_FailedRun(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "scene.json")
	metrics := filepath.Join(dir, "tether.prom")
	writeFile(t, input, twoBoxesJSON)

	c := New(io.Discard, log.InfoLevel)
	c.InstallHooks()
	t.Cleanup(observability.Reset)

	root := c.RootCommand()
	root.SetArgs([]string{"solve", input, "--dry-run", "--pin", "ghost", "--metrics-file", metrics})
	if err := root.Execute(); err == nil {
		t.Fatal("solve with an unknown pin should fail")
	}
	if err := c.WriteMetrics(); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}

	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	want := `tether_solves_total{cached="false",outcome="error"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("metrics missing %q:\n%s", want, data)
	}
}
