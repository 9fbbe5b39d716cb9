package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tether/pkg/constraint"
)

// WriteJSON encodes a scene as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(s *Scene, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes a scene as TOML and writes it to w.
// The output can be re-imported with [ReadTOML].
func WriteTOML(s *Scene, w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(normalize(s)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a scene to a JSON file at path.
func ExportJSON(s *Scene, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(s, w) })
}

// ExportTOML writes a scene to a TOML file at path.
func ExportTOML(s *Scene, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteTOML(s, w) })
}

// Export writes a scene file, choosing the encoder from the extension.
func Export(s *Scene, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatTOML {
		return ExportTOML(s, path)
	}
	return ExportJSON(s, path)
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// normalize replaces nil slices so empty scenes encode as [] rather than null.
func normalize(s *Scene) *Scene {
	if s.Objects != nil && s.Constraints != nil {
		return s
	}
	out := *s
	if out.Objects == nil {
		out.Objects = []Object{}
	}
	if out.Constraints == nil {
		out.Constraints = []constraint.Record{}
	}
	return &out
}
