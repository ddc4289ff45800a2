// Package observability provides hooks for metrics and logging.
//
// Canvas edits, renders, cache lookups, and editor requests report events
// through small hook interfaces. Nothing here depends on a metrics backend:
// main registers an implementation at startup (see pkg/metrics) and every
// other package calls the registered hooks, which default to no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(metrics.Render())
//	    observability.SetCacheHooks(metrics.Cache())
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	observability.Render().OnRenderStart(ctx, "svg")
//	// ... render ...
//	observability.Render().OnRenderComplete(ctx, "svg", len(routes), time.Since(start), err)
//
// Canvas hooks take no context: canvas edits are synchronous in-memory
// updates driven directly by pointer events.
package observability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/geom"
)

// CanvasHooks receives edit events from a canvas.
type CanvasHooks interface {
	// OnBlockMove fires after a block move with the number of joints that
	// followed the block.
	OnBlockMove(blockID string, to geom.Point, joints int)

	// OnJointMove fires after a joint move. snapped is false when the joint
	// was placed at the raw pointer position.
	OnJointMove(jointID string, to geom.Point, snapped bool)
}

// RenderHooks receives one start and one completion event per rendered format.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, routes int, duration time.Duration, err error)
}

// CacheHooks receives lookups and writes from the pipeline cache. keyType is
// "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives request events from the editor server. route is the
// matched chi pattern, so session ids do not explode label cardinality.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopCanvasHooks discards canvas events.
type NoopCanvasHooks struct{}

func (NoopCanvasHooks) OnBlockMove(string, geom.Point, int)  {}
func (NoopCanvasHooks) OnJointMove(string, geom.Point, bool) {}

// NoopRenderHooks discards render events.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string)                             {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards request events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// registered holds one hook implementation. Reads are lock-free since every
// render and request consults it.
type registered[T any] struct {
	v    atomic.Pointer[T]
	noop T
}

func (r *registered[T]) get() T {
	if p := r.v.Load(); p != nil {
		return *p
	}
	return r.noop
}

func (r *registered[T]) set(h T) { r.v.Store(&h) }

func (r *registered[T]) reset() { r.v.Store(nil) }

var (
	canvasHooks = registered[CanvasHooks]{noop: NoopCanvasHooks{}}
	renderHooks = registered[RenderHooks]{noop: NoopRenderHooks{}}
	cacheHooks  = registered[CacheHooks]{noop: NoopCacheHooks{}}
	httpHooks   = registered[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetCanvasHooks registers h for canvases built afterwards. A canvas captures
// its hooks when it is built, so call this before loading a graph.
// Nil is ignored.
func SetCanvasHooks(h CanvasHooks) {
	if h != nil {
		canvasHooks.set(h)
	}
}

// SetRenderHooks registers h. Nil is ignored.
func SetRenderHooks(h RenderHooks) {
	if h != nil {
		renderHooks.set(h)
	}
}

// SetCacheHooks registers h. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetHTTPHooks registers h. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

// Canvas, Render, Cache and HTTP return the registered hooks.
func Canvas() CanvasHooks { return canvasHooks.get() }
func Render() RenderHooks { return renderHooks.get() }
func Cache() CacheHooks   { return cacheHooks.get() }
func HTTP() HTTPHooks     { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	canvasHooks.reset()
	renderHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
