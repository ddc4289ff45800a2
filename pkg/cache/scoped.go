package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// build version so that a renderer upgrade never serves stale artifacts:
//
//	keyer := cache.NewScopedKeyer(nil, "v1.2.0:")
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer returns inner with prefix prepended to its keys. A nil inner
// means the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) LayoutKey(graphHash string) string {
	return k.Prefix + k.Inner.LayoutKey(graphHash)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(layoutHash, opts)
}
