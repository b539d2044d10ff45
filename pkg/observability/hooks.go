// Package observability lets the pipeline, the caches and the API report
// events without depending on a metrics backend.
//
// Each event family has an interface, a no-op implementation and a
// process-wide slot. [Prometheus] implements all three families as metrics;
// [LogHooks] writes them to a charmbracelet logger at debug level.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	    observability.SetPipelineHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnFitStart(ctx, nodeCount)
//	// ... fit splines ...
//	observability.Pipeline().OnFitComplete(ctx, branchCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the fit and render stages. Render
// events fire once per rendered vertex sequence, so a full trace run reports
// one per branch.
type PipelineHooks interface {
	OnFitStart(ctx context.Context, nodeCount int)
	OnFitComplete(ctx context.Context, branchCount int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, mode string, segments int)
	OnRenderComplete(ctx context.Context, mode string, voxels int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives cache lookups and writes. keyType is "tree" or "mask".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives API requests. route is the chi route pattern, not the
// raw path, to keep label cardinality bounded. OnError carries the error code
// of a failed request in addition to its OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route, code string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFitStart(context.Context, int)                                    {}
func (NoopPipelineHooks) OnFitComplete(context.Context, int, time.Duration, error)           {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, int)                         {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string)                {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry holds the process-wide implementation of one hook interface.
type registry[H any] struct {
	mu   sync.RWMutex
	cur  H
	noop H
}

func newRegistry[H any](noop H) *registry[H] {
	return &registry[H]{cur: noop, noop: noop}
}

func (r *registry[H]) get() H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur
}

// set installs h. A nil h leaves the current hooks in place.
func (r *registry[H]) set(h H) {
	if any(h) == nil {
		return
	}
	r.mu.Lock()
	r.cur = h
	r.mu.Unlock()
}

func (r *registry[H]) reset() {
	r.mu.Lock()
	r.cur = r.noop
	r.mu.Unlock()
}

var (
	pipelineHooks = newRegistry[PipelineHooks](NoopPipelineHooks{})
	cacheHooks    = newRegistry[CacheHooks](NoopCacheHooks{})
	httpHooks     = newRegistry[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks installs the hooks the pipeline runner reports to. Call it
// at startup, before the first run.
func SetPipelineHooks(h PipelineHooks) { pipelineHooks.set(h) }

// SetCacheHooks installs the hooks for tree and mask cache lookups.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h) }

// SetHTTPHooks installs the hooks the API middleware reports to.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h) }

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores the no-op hooks everywhere.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
