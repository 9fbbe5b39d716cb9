package cache

// ScopedKeyer wraps a Keyer with a prefix so separate namespaces can share
// one cache directory.
//
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "diagram-editor:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// [DefaultKeyer]. An empty prefix returns inner unchanged.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SolveKey generates a prefixed solve key.
func (k *ScopedKeyer) SolveKey(sceneHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(sceneHash, opts)
}
