package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxObjectIDLength bounds object and constraint identifiers read from files.
const maxObjectIDLength = 256

// ValidateObjectID validates an object or constraint identifier read from
// untrusted input.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateObjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(id) > maxObjectIDLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxObjectIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier %q contains control characters", id)
		}
	}

	return nil
}

// ValidatePath validates a scene or output file path given on the command
// line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateDistance checks that a target distance is a finite number.
// Negative values pass: they are clamped when solving.
func ValidateDistance(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return New(ErrCodeInvalidRecord, "target distance must be finite, got %v", d)
	}
	return nil
}

// ValidateTolerance checks a solver tolerance. Zero selects the default.
func ValidateTolerance(tol float64) error {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		return New(ErrCodeInvalidOptions, "tolerance must be a finite non-negative number, got %v", tol)
	}
	return nil
}

// ValidateIterations checks a solver pass budget. Zero selects the default.
func ValidateIterations(n int) error {
	const maxIterations = 100000
	if n < 0 {
		return New(ErrCodeInvalidOptions, "max iterations cannot be negative, got %d", n)
	}
	if n > maxIterations {
		return New(ErrCodeInvalidOptions, "max iterations too large (max %d)", maxIterations)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed names,
// case-insensitively.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
