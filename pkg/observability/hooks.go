// Package observability provides hooks for metrics, tracing, and logging.
//
// The engine is instrumented without hard dependencies on any observability
// backend: hook interfaces have no-op defaults, and consumers register
// implementations at startup.
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    // ... run application
//	}
//
// The engine then emits events through the registered hooks:
//
//	observability.Engine().OnLayoutStart(ctx, topologyID, nodeCount)
//	// ... run layout ...
//	observability.Engine().OnLayoutComplete(ctx, topologyID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the layout engine.
type EngineHooks interface {
	// Layout events. OnLayoutComplete fires for both successful and failed
	// layout calls; err is nil on success.
	OnLayoutStart(ctx context.Context, topologyID string, nodeCount int)
	OnLayoutComplete(ctx context.Context, topologyID string, duration time.Duration, err error)

	// Focus events
	OnFocusEnter(ctx context.Context, nodeID string, neighborCount int)
	OnFocusExit(ctx context.Context)

	// Topology switch events
	OnTopologySwitch(ctx context.Context, oldID, newID string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from layout-cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnLayoutStart(context.Context, string, int)                    {}
func (NoopEngineHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (NoopEngineHooks) OnFocusEnter(context.Context, string, int)                     {}
func (NoopEngineHooks) OnFocusExit(context.Context)                                   {}
func (NoopEngineHooks) OnTopologySwitch(context.Context, string, string)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Registry
// =============================================================================

var (
	mu          sync.RWMutex
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
)

// SetEngineHooks registers engine hooks. Call at startup, before the engine
// runs; registration is not synchronized with in-flight emissions.
func SetEngineHooks(h EngineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopEngineHooks{}
	}
	engineHooks = h
}

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopCacheHooks{}
	}
	cacheHooks = h
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
