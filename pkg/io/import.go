package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/tether/pkg/errors"
)

// Supported scene file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// FormatFromPath returns the scene format implied by the file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := errs.ValidateFormat(ext, FormatJSON, FormatTOML); err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "scene file %s", path)
	}
	return ext, nil
}

// ReadJSON decodes a JSON scene from r.
//
// The input must be a JSON object with "objects" and "constraints" arrays.
// Each object must have a unique, non-empty "id". Each anchor must name one
// of the known anchor types. Constraint records are decoded as-is and
// validated later by [Scene.Graph].
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadTOML decodes a TOML scene from r. It applies the same checks as
// [ReadJSON].
func ReadTOML(r io.Reader) (*Scene, error) {
	var s Scene
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ImportJSON reads a JSON scene file at path.
func ImportJSON(path string) (*Scene, error) {
	return importFile(path, ReadJSON)
}

// ImportTOML reads a TOML scene file at path.
func ImportTOML(path string) (*Scene, error) {
	return importFile(path, ReadTOML)
}

// Import reads a scene file, choosing the decoder from the extension
// (.json or .toml).
func Import(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatTOML {
		return ImportTOML(path)
	}
	return ImportJSON(path)
}

func importFile(path string, read func(io.Reader) (*Scene, error)) (*Scene, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
