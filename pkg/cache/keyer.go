package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// RenderKey identifies the image and code rendered for spec against the
	// dataset with the given content hash.
	RenderKey(datasetHash string, spec any, opts RenderKeyOpts) string
	// UploadKey identifies an uploaded dataset.
	UploadKey(id string) string
}

// RenderKeyOpts holds render settings that change the output without being
// part of the chart spec.
type RenderKeyOpts struct {
	DPI float64 `json:"dpi"`
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key builder.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey hashes the dataset hash, the spec and the options.
func (DefaultKeyer) RenderKey(datasetHash string, spec any, opts RenderKeyOpts) string {
	return hashKey("render", datasetHash, spec, opts)
}

// UploadKey returns "upload:<id>".
func (DefaultKeyer) UploadKey(id string) string { return "upload:" + id }

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend.
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(datasetHash string, spec any, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(datasetHash, spec, opts)
}

// UploadKey generates a prefixed upload key.
func (k *ScopedKeyer) UploadKey(id string) string {
	return k.prefix + k.inner.UploadKey(id)
}
