package core_test

import (
	"fmt"
	"sync"
)

// fakeReporter records failures instead of stopping the test, so tests can assert on them.
type fakeReporter struct {
	mu       sync.Mutex
	failures []string
	logs     []string
	cleanups []func()
}

func (f *fakeReporter) Cleanup(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleanups = append(f.cleanups, fn)
}

func (f *fakeReporter) Fatalf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func (f *fakeReporter) Helper() {}

func (f *fakeReporter) Logf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logs = append(f.logs, fmt.Sprintf(format, args...))
}

func (f *fakeReporter) failed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.failures) > 0
}

func (f *fakeReporter) lastFailure() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.failures) == 0 {
		return ""
	}

	return f.failures[len(f.failures)-1]
}

// runCleanups runs registered cleanups last-in first-out, like testing.T.
func (f *fakeReporter) runCleanups() {
	f.mu.Lock()
	cleanups := f.cleanups
	f.cleanups = nil
	f.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// bareReporter has no Cleanup or Logf.
type bareReporter struct {
	failures []string
}

func (b *bareReporter) Fatalf(format string, args ...any) {
	b.failures = append(b.failures, fmt.Sprintf(format, args...))
}

func (b *bareReporter) Helper() {}
