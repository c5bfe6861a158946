// Package subst substitutes test doubles for package-level seams during tests.
//
// A seam is a package variable, usually of function type, that production code calls
// through. Tests replace it for the lifetime of a scope and the harness restores it on every
// exit path:
//
//	subst.Patch(t, "a.AFunc", subst.Return("T"))           // by dotted path
//	subst.Var(t, &a.AFunc, subst.Sequence("T0", "T1"))      // by pointer
//
// Dotted paths resolve against seams published with Declare, normally from a file written by
// substgen. This is the public API entry point. Implementation lives in internal/core.
package subst

import (
	"io"
	"reflect"

	"github.com/toejough/subst/internal/core"
)

// Attribute names one seam of a container.
type Attribute = core.Attribute

// Attr pairs an attribute name with a pointer to its seam variable.
func Attr(name string, ptr any) Attribute {
	return core.Attr(name, ptr)
}

// Behavior describes what a substituted target does while its substitution is active.
type Behavior = core.Behavior

// BehaviorKind enumerates the substitute behaviors.
type BehaviorKind = core.BehaviorKind

// BehaviorKind values.
const (
	KindReturn   = core.KindReturn
	KindSequence = core.KindSequence
	KindDerive   = core.KindDerive
	KindRaise    = core.KindRaise
)

// Call records the arguments of one intercepted invocation.
type Call = core.Call

// Catalog maps dotted paths to seam variables.
type Catalog = core.Catalog

// NewCatalog returns an empty catalog, for tests that do not want the process-wide one.
func NewCatalog() *Catalog {
	return core.NewCatalog()
}

// Declare publishes seams under container in the process-wide catalog, so that
// "container.Name" resolves to them.
func Declare(container string, attrs ...Attribute) {
	core.Declare(container, attrs...)
}

// Derive calls fn, which must have the target's type, with the exact arguments of each call.
func Derive(fn any) Behavior {
	return core.Derive(fn)
}

// Errors re-exported from internal/core.
var (
	ErrExhausted    = core.ErrExhausted
	ErrIncompatible = core.ErrIncompatible
	ErrResolution   = core.ErrResolution
	ErrScopeClosed  = core.ErrScopeClosed
)

// ExhaustedError is raised at the call site when a Sequence runs out.
type ExhaustedError = core.ExhaustedError

// ForTest returns the Scope for t, creating it if needed. With *testing.T the scope closes
// when the test ends.
func ForTest(t TestReporter, opts ...Option) *Scope {
	return core.ForTest(t, opts...)
}

// Lookup resolves a dotted path in the process-wide catalog.
func Lookup(path string) (Target, error) {
	return core.Resolve(path)
}

// Matcher is satisfied by match.BeAny, match.Satisfy and gomega matchers.
type Matcher = core.Matcher

// NewScope creates an explicit scope for fixture lifetimes. Close it with defer.
func NewScope(opts ...Option) *Scope {
	return core.NewScope(opts...)
}

// Option configures a Scope.
type Option = core.Option

// Original returns the value the substitution replaced, typed as F. It fails the scope's
// test if F is not the target's type.
func Original[F any](sub *Substitution) F {
	original, ok := sub.Original().(F)
	if !ok {
		t := sub.Scope().Reporter()
		if t == nil {
			panic("subst: original of " + sub.Path() + " has a different type")
		}

		t.Helper()
		t.Fatalf("subst: original of %s is %T, not the requested type", sub.Path(), sub.Original())
	}

	return original
}

// Patch substitutes the seam at path for the rest of t's scope. Resolution and
// compatibility errors fail the test.
func Patch(t TestReporter, path string, behavior Behavior) *Substitution {
	t.Helper()

	sub, err := ForTest(t).RegisterPath(path, behavior)
	if err != nil {
		t.Fatalf("subst: patch %s: %v", path, err)
	}

	return sub
}

// Raise makes every call fail with err: returned if the target's last result is an error,
// panicked otherwise.
func Raise(err error) Behavior {
	return core.Raise(err)
}

// ResolutionError is returned when a dotted path does not name a declared seam.
type ResolutionError = core.ResolutionError

// Restore closes t's scope now. Only needed for reporters without Cleanup.
func Restore(t TestReporter) {
	core.Restore(t)
}

// Results groups the values of a Sequence entry for functions with zero or several results.
type Results = core.Results

// Return makes every call return values. For value targets, pass one value.
func Return(values ...any) Behavior {
	return core.Return(values...)
}

// Scope owns substitutions and restores them when closed.
type Scope = core.Scope

// Sequence returns one entry per call and panics with ExhaustedError after the last.
func Sequence(entries ...any) Behavior {
	return core.Sequence(entries...)
}

// Serial keeps tests that substitute shared seams from running at the same time.
func Serial(t TestReporter) {
	t.Helper()
	core.Serial(t)
}

// Substitution is one active override.
type Substitution = core.Substitution

// Swap installs replacement at target for the rest of t's scope. Function targets dispatch
// to replacement; other targets hold it as their value.
func Swap[T any](t TestReporter, target *T, replacement T) *Substitution {
	t.Helper()

	behavior := Return(replacement)
	if isFunc(replacement) {
		behavior = Derive(replacement)
	}

	return Var(t, target, behavior)
}

// Target identifies one seam variable.
type Target = core.Target

// TargetOf builds a Target from a pointer. An empty path uses the declared path, if any.
func TargetOf(ptr any, path string) (Target, error) {
	return core.TargetOf(ptr, path)
}

// TestReporter is the minimal interface subst needs from test frameworks.
type TestReporter = core.TestReporter

// TraceEnv names the environment variable that routes scope traces to t.Logf.
const TraceEnv = core.TraceEnv

// Var substitutes the variable target points to for the rest of t's scope.
func Var[T any](t TestReporter, target *T, behavior Behavior) *Substitution {
	t.Helper()

	tgt, err := core.TargetOf(target, "")
	if err != nil {
		t.Fatalf("subst: %v", err)

		return nil
	}

	sub, err := ForTest(t).Register(tgt, behavior)
	if err != nil {
		t.Fatalf("subst: %v", err)
	}

	return sub
}

// WithCatalog resolves paths against catalog instead of the process-wide one.
func WithCatalog(catalog *Catalog) Option {
	return core.WithCatalog(catalog)
}

// WithGetenv replaces os.Getenv for reading configuration.
func WithGetenv(getenv func(string) string) Option {
	return core.WithGetenv(getenv)
}

// WithReporter sets the TestReporter used by substitution assertions.
func WithReporter(t TestReporter) Option {
	return core.WithReporter(t)
}

// WithTrace writes a line per register, replace, invoke and restore event to w.
func WithTrace(w io.Writer) Option {
	return core.WithTrace(w)
}

func isFunc(value any) bool {
	return value != nil && reflect.TypeOf(value).Kind() == reflect.Func
}
