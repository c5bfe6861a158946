package core

import (
	"sync"
)

// ForTest returns the Scope for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Scope, so helpers and the test
// body share one set of substitutions.
//
// If the TestReporter supports Cleanup (like *testing.T), the Scope is closed and removed
// from the registry when the test completes. Otherwise the caller must call Restore.
//
// Options only apply when the Scope is created. Passing options for a test that already has
// a Scope fails the test.
func ForTest(t TestReporter, opts ...Option) *Scope {
	registryMu.Lock()
	defer registryMu.Unlock()

	if scope, ok := registry[t]; ok {
		if len(opts) > 0 {
			t.Helper()
			t.Fatalf("subst: ForTest options ignored, the scope for this test already exists")
		}

		return scope
	}

	scope := NewScope(append([]Option{WithReporter(t)}, opts...)...)
	registry[t] = scope

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			forget(t)
			scope.Close()
		})
	}

	return scope
}

// Restore closes the Scope registered for t, if any, and forgets it.
func Restore(t TestReporter) {
	scope := forget(t)
	if scope != nil {
		scope.Close()
	}
}

// Serial holds a process-wide lock until t's cleanup runs, so tests that substitute the same
// seams do not interleave. It needs a TestReporter that supports Cleanup. The test's scope is
// restored before the lock is released, whether it was created before or after Serial.
func Serial(t TestReporter) {
	t.Helper()

	cr, ok := t.(cleanupRegistrar)
	if !ok {
		t.Fatalf("subst: Serial needs a TestReporter with Cleanup, got %T", t)

		return
	}

	serialMu.Lock()
	cr.Cleanup(func() {
		Restore(t)
		serialMu.Unlock()
	})
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*Scope)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
	//nolint:gochecknoglobals // Serializes tests that share seams
	serialMu sync.Mutex
)

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}

func forget(t TestReporter) *Scope {
	registryMu.Lock()
	defer registryMu.Unlock()

	scope := registry[t]
	delete(registry, t)

	return scope
}
