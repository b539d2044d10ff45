package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each dataset or
// deployment its own namespace in a shared backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "brain1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TreeKey generates a prefixed spline tree key.
func (k *ScopedKeyer) TreeKey(traceHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(traceHash, opts)
}

// MaskKey generates a prefixed mask key.
func (k *ScopedKeyer) MaskKey(verticesHash string, opts MaskKeyOpts) string {
	return k.prefix + k.inner.MaskKey(verticesHash, opts)
}
