// Package observability provides hooks for metrics, tracing, and logging.
//
// The diagram engine has no hard dependency on an observability backend.
// Consumers register hooks at startup and receive events about store
// mutations, guardrail evaluation and document I/O.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetIOHooks(&myIOHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... mutate ...
//	observability.Store().OnMutation("addNode", time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the diagram store.
// Store operations are synchronous and take no context.
type StoreHooks interface {
	// OnMutation records a completed store operation.
	OnMutation(op string, duration time.Duration)

	// OnGuardrails records the result of a guardrail evaluation.
	OnGuardrails(warnings, errors int)
}

// =============================================================================
// IO Hooks
// =============================================================================

// IOHooks receives events from document import, export and workspace access.
type IOHooks interface {
	// OnImport records a document read.
	OnImport(ctx context.Context, source string, nodeCount int, err error)

	// OnExport records a document write.
	OnExport(ctx context.Context, target string, size int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnMutation(string, time.Duration) {}
func (NoopStoreHooks) OnGuardrails(int, int)            {}

// NoopIOHooks is a no-op implementation of IOHooks.
type NoopIOHooks struct{}

func (NoopIOHooks) OnImport(context.Context, string, int, error) {}
func (NoopIOHooks) OnExport(context.Context, string, int, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks StoreHooks = NoopStoreHooks{}
	ioHooks    IOHooks    = NoopIOHooks{}
	hooksMu    sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetIOHooks registers custom I/O hooks.
func SetIOHooks(h IOHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		ioHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// IO returns the registered I/O hooks.
func IO() IOHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return ioHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	ioHooks = NoopIOHooks{}
}
