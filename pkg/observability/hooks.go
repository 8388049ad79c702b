// Package observability lets callers watch the pipeline, the artifact cache
// and the HTTP server without those packages depending on a metrics or
// tracing library.
//
// Each event family is an interface with a no-op default. A program installs
// its own implementation once at startup; instrumented code fetches the
// current one at the call site:
//
//	observability.SetPipelineHooks(stageLogger{logger})
//	...
//	observability.Pipeline().OnLayoutStart(ctx, g.NodeCount())
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the schema pipeline.
type PipelineHooks interface {
	// Build events: schema source name, resulting node and warning counts.
	OnBuildStart(ctx context.Context, source string)
	OnBuildComplete(ctx context.Context, source string, nodes, warnings int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, nodes int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from artifact cache operations. The key type
// is the artifact format.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the viewer HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and latency.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string) {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)           {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

var (
	pipelineHooks atomic.Pointer[PipelineHooks]
	cacheHooks    atomic.Pointer[CacheHooks]
	httpHooks     atomic.Pointer[HTTPHooks]
)

func load[T any](p *atomic.Pointer[T], fallback T) T {
	if h := p.Load(); h != nil {
		return *h
	}
	return fallback
}

// SetPipelineHooks installs h. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.Store(&h)
	}
}

// SetCacheHooks installs h. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.Store(&h)
	}
}

// SetHTTPHooks installs h. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.Store(&h)
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return load(&pipelineHooks, PipelineHooks(NoopPipelineHooks{})) }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return load(&cacheHooks, CacheHooks(NoopCacheHooks{})) }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return load(&httpHooks, HTTPHooks(NoopHTTPHooks{})) }

// Reset reinstalls the no-op hooks.
func Reset() {
	pipelineHooks.Store(nil)
	cacheHooks.Store(nil)
	httpHooks.Store(nil)
}
