package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/cache"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the optional arrangement and the render stage with caching.
func (r *Runner) Execute(ctx context.Context, doc mfio.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Document: doc}

	if opts.Arrange {
		layoutStart := time.Now()
		arranged, res, hit, err := r.ArrangeWithCacheInfo(ctx, doc, opts)
		if err != nil {
			return nil, err
		}
		result.Document = arranged
		result.Layout = &res
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.Stats.Fallbacks = res.Fallbacks
		result.CacheInfo.LayoutHit = hit

		r.Logger.Info("arranged images",
			"images", len(arranged.Images),
			"seed", res.Seed,
			"fallbacks", res.Fallbacks,
			"cached", hit,
			"duration", result.Stats.LayoutTime)
	}
	result.Stats.Images = len(result.Document.Images)
	result.Stats.Texts = len(result.Document.Texts)

	renderStart := time.Now()
	artifacts, hash, hit, err := r.renderWithCacheInfo(ctx, result.Document, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.SceneHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ArrangeWithCacheInfo arranges doc and reports whether the arrangement
// came from the cache. Only arrangements with an explicit seed are
// cached, since a zero seed asks for a fresh shuffle.
func (r *Runner) ArrangeWithCacheInfo(ctx context.Context, doc mfio.Document, opts Options) (mfio.Document, layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return mfio.Document{}, layout.Result{}, false, err
	}
	r.applyLogger(&opts)

	cacheable := opts.Seed != 0
	var key string
	if cacheable {
		hash, err := r.SceneHash(doc, nil)
		if err != nil {
			return mfio.Document{}, layout.Result{}, false, err
		}
		key = r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts(doc))
		if !opts.Refresh {
			if res, ok := r.cachedLayout(ctx, key); ok {
				return applyLayout(doc, res), res, true, nil
			}
		}
	}

	arranged, res, err := Arrange(ctx, doc, opts)
	if err != nil {
		return mfio.Document{}, layout.Result{}, false, err
	}

	if cacheable {
		if data, err := json.Marshal(res); err == nil {
			r.store(ctx, "layout", key, data, cache.TTLLayout)
		}
	}
	return arranged, res, false, nil
}

// Arrange is ArrangeWithCacheInfo without the cache hit info.
func (r *Runner) Arrange(ctx context.Context, doc mfio.Document, opts Options) (mfio.Document, layout.Result, error) {
	arranged, res, _, err := r.ArrangeWithCacheInfo(ctx, doc, opts)
	return arranged, res, err
}

// RenderWithCacheInfo renders doc and reports whether every artifact
// came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc mfio.Document, opts Options) (map[string][]byte, bool, error) {
	artifacts, _, hit, err := r.renderWithCacheInfo(ctx, doc, opts)
	return artifacts, hit, err
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, doc mfio.Document, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, doc mfio.Document, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	fp, _ := opts.Loader.(Fingerprinter)
	hash, err := r.SceneHash(doc, fp)
	if err != nil {
		return nil, "", false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, "artifact", r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, hash, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, missing)
	rendered, err := renderFormats(ctx, doc, opts, missing)
	observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		r.store(ctx, "artifact", r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
		artifacts[format] = data
	}
	return artifacts, hash, false, nil
}

// SceneHash hashes the serialized document. A non-nil fp mixes in the
// fingerprint of every image source, so an edited image file changes the
// hash.
func (r *Runner) SceneHash(doc mfio.Document, fp Fingerprinter) (string, error) {
	var buf bytes.Buffer
	if err := mfio.WriteJSON(doc, &buf); err != nil {
		return "", err
	}
	if fp != nil {
		for _, img := range doc.Images {
			f, err := fp.Fingerprint(img.Source)
			if err != nil {
				return "", err
			}
			buf.WriteString(img.Source + "=" + f + "\n")
		}
	}
	return cache.Hash(buf.Bytes()), nil
}

// Fingerprinter identifies the current contents of an image source.
type Fingerprinter interface {
	Fingerprint(src string) (string, error)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (layout.Result, bool) {
	data, ok := r.lookup(ctx, "layout", key)
	if !ok {
		return layout.Result{}, false
	}
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Debug("discarding cached layout", "err", err)
		return layout.Result{}, false
	}
	return res, true
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
