package cache

import "slices"

// SolveKeyOpts holds the solver options that affect a cached result.
type SolveKeyOpts struct {
	MaxIterations int      `json:"max_iterations"`
	Tolerance     float64  `json:"tolerance"`
	Anchored      bool     `json:"anchored"`
	Pin           []string `json:"pin,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// SolveKey returns the key for solving the scene with the given content
	// hash under opts.
	SolveKey(sceneHash string, opts SolveKeyOpts) string
}

// DefaultKeyer produces keys of the form "solve:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolveKey hashes the scene hash and options. The pin list is sorted first
// so the order of --pin flags does not change the key.
func (DefaultKeyer) SolveKey(sceneHash string, opts SolveKeyOpts) string {
	if len(opts.Pin) > 0 {
		opts.Pin = slices.Clone(opts.Pin)
		slices.Sort(opts.Pin)
		opts.Pin = slices.Compact(opts.Pin)
	}
	return hashKey("solve", sceneHash, opts)
}
