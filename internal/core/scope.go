package core

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Option configures a Scope.
type Option func(*Scope)

// Scope owns a set of substitutions and restores all of them, newest first, when closed.
// A scope holds at most one substitution per target: registering a target again replaces
// the behavior of the existing substitution.
type Scope struct {
	reporter TestReporter
	catalog  *Catalog
	trace    io.Writer
	getenv   func(string) string
	logToT   bool

	mu     sync.Mutex
	subs   []*Substitution
	byKey  map[targetKey]*Substitution
	closed bool
}

// NewScope creates an open scope. The caller must Close it on every exit path, typically
// with defer or t.Cleanup.
func NewScope(opts ...Option) *Scope {
	scope := &Scope{
		catalog: DefaultCatalog,
		getenv:  os.Getenv,
		byKey:   make(map[targetKey]*Substitution),
	}

	for _, opt := range opts {
		opt(scope)
	}

	if scope.trace == nil && scope.getenv(TraceEnv) != "" {
		_, scope.logToT = scope.reporter.(logger)
	}

	return scope
}

// Close restores every substitution in reverse registration order. Closing twice is a no-op.
func (s *Scope) Close() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return
	}

	s.closed = true
	subs := s.subs
	s.mu.Unlock()

	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Restore()
	}

	s.tracef("scope closed, %d substitutions restored", len(subs))
}

// Closed reports whether Close has run.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Register installs behavior at target until the scope closes.
func (s *Scope) Register(target Target, behavior Behavior) (*Substitution, error) {
	if !target.ptr.IsValid() {
		return nil, &ResolutionError{Path: target.path, Reason: "zero Target"}
	}

	compiled, err := compile(target.path, target.Type(), behavior)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil, fmt.Errorf("%w: cannot register %s", ErrScopeClosed, target.path)
	}

	if existing, ok := s.byKey[target.key()]; ok {
		existing.swap(compiled)
		s.mu.Unlock()

		s.tracef("replace %s with %v", target.path, behavior.kind)

		return existing, nil
	}

	sub := newSubstitution(s, target, compiled)
	s.subs = append(s.subs, sub)
	s.byKey[target.key()] = sub
	s.mu.Unlock()

	s.tracef("register %s with %v", target.path, behavior.kind)

	return sub, nil
}

// RegisterPath resolves path in the scope's catalog and registers behavior there.
func (s *Scope) RegisterPath(path string, behavior Behavior) (*Substitution, error) {
	target, err := s.catalog.Resolve(path)
	if err != nil {
		return nil, err
	}

	return s.Register(target, behavior)
}

// Reporter returns the TestReporter the scope reports assertion failures to, or nil.
func (s *Scope) Reporter() TestReporter {
	return s.reporter
}

// Substitutions returns the scope's substitutions in registration order.
func (s *Scope) Substitutions() []*Substitution {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make([]*Substitution, len(s.subs))
	copy(subs, s.subs)

	return subs
}

func (s *Scope) tracef(format string, args ...any) {
	if s == nil {
		return
	}

	if s.trace != nil {
		_, _ = fmt.Fprintf(s.trace, "subst: "+format+"\n", args...)

		return
	}

	if s.logToT {
		if l, ok := s.reporter.(logger); ok {
			l.Logf("subst: "+format, args...)
		}
	}
}

// TestReporter is the minimal interface subst needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// TraceEnv names the environment variable that routes scope traces to the reporter's Logf.
const TraceEnv = "SUBST_TRACE"

// WithCatalog resolves paths against catalog instead of DefaultCatalog.
func WithCatalog(catalog *Catalog) Option {
	return func(s *Scope) {
		s.catalog = catalog
	}
}

// WithGetenv replaces os.Getenv for reading configuration.
func WithGetenv(getenv func(string) string) Option {
	return func(s *Scope) {
		s.getenv = getenv
	}
}

// WithReporter sets the TestReporter used by substitution assertions.
func WithReporter(t TestReporter) Option {
	return func(s *Scope) {
		s.reporter = t
	}
}

// WithTrace writes a line per register, replace, invoke and restore event to w.
func WithTrace(w io.Writer) Option {
	return func(s *Scope) {
		s.trace = w
	}
}

type logger interface {
	Logf(format string, args ...any)
}
