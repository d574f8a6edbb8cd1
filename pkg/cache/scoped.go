package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments
// can share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "shortword:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Prefix returns the scope prepended to every key.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// BaseKey implements Keyer.
func (k *ScopedKeyer) BaseKey(genHash string, opts BaseKeyOpts) string {
	return k.prefix + k.inner.BaseKey(genHash, opts)
}

// TableKey implements Keyer.
func (k *ScopedKeyer) TableKey(genHash string, base []int) string {
	return k.prefix + k.inner.TableKey(genHash, base)
}

// SolveKey implements Keyer.
func (k *ScopedKeyer) SolveKey(tableKey string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(tableKey, opts)
}
