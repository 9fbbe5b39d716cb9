package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	origV, origC, origD, origRead := Version, Commit, Date, readBuildInfo
	defer func() { Version, Commit, Date, readBuildInfo = origV, origC, origD, origRead }()

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.3.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			},
		}, true
	}

	Version, Commit, Date = "dev", "none", "unknown"
	fill()
	if Version != "v0.3.1" || Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
		t.Errorf("fill() = %s %s %s", Version, Commit, Date)
	}

	Version, Commit, Date = "v9.9.9", "fixed", "today"
	fill()
	if Version != "v9.9.9" || Commit != "fixed" || Date != "today" {
		t.Error("ldflags values must not be overwritten")
	}
}

func TestFillDevel(t *testing.T) {
	origV, origRead := Version, readBuildInfo
	defer func() { Version, readBuildInfo = origV, origRead }()

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	Version = "dev"
	fill()
	if Version != "dev" {
		t.Errorf("Version = %q, want dev for (devel) builds", Version)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q", String())
	}
}
