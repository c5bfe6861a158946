package core

import (
	"reflect"
	"sync"
)

// Call records the arguments of one intercepted invocation. Variadic arguments are flattened.
type Call struct {
	Args []any
}

// Substitution is one active override of a Target. It is created by Scope.Register and
// restored by Restore or by closing its scope.
type Substitution struct {
	scope  *Scope
	target Target

	mu       sync.Mutex
	original reflect.Value
	plan     *plan
	cursor   int
	calls    []Call
	restored bool
}

// CallCount is the number of intercepted invocations so far.
func (s *Substitution) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// Called reports whether the substitute was invoked at least once.
func (s *Substitution) Called() bool {
	return s.CallCount() > 0
}

// Calls returns a copy of the recorded invocations in call order.
func (s *Substitution) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)

	return calls
}

// Kind reports the active behavior's kind.
func (s *Substitution) Kind() BehaviorKind {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.plan.kind
}

// Original returns the value the target held before substitution.
func (s *Substitution) Original() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.original.Interface()
}

// Path is the target's dotted path.
func (s *Substitution) Path() string {
	return s.target.path
}

// Restore writes the original value back. Restoring twice is a no-op.
func (s *Substitution) Restore() {
	s.mu.Lock()

	if s.restored {
		s.mu.Unlock()

		return
	}

	s.target.slot().Set(s.original)
	s.restored = true
	calls := len(s.calls)
	s.mu.Unlock()

	s.scope.tracef("restore %s after %d calls", s.target.path, calls)
}

// Restored reports whether Restore has run.
func (s *Substitution) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.restored
}

// Scope returns the scope that owns the substitution.
func (s *Substitution) Scope() *Scope {
	return s.scope
}

// Target returns the substituted target.
func (s *Substitution) Target() Target {
	return s.target
}

// capture saves the target's current value and installs the substitute. Must be called with s.mu held.
func (s *Substitution) capture() {
	slot := s.target.slot()

	original := reflect.New(slot.Type()).Elem()
	original.Set(slot)
	s.original = original
	s.restored = false

	s.install()
}

// install writes the substitute into the target. Must be called with s.mu held.
func (s *Substitution) install() {
	slot := s.target.slot()

	if slot.Kind() == reflect.Func {
		slot.Set(reflect.MakeFunc(slot.Type(), s.invoke))

		return
	}

	slot.Set(s.plan.fixed[0])
}

// invoke is the dispatcher behind every intercepted call of a function target.
func (s *Substitution) invoke(args []reflect.Value) []reflect.Value {
	variadic := s.target.Type().IsVariadic()

	s.mu.Lock()
	compiled := s.plan
	s.calls = append(s.calls, Call{Args: flattenArgs(args, variadic)})
	callNum := len(s.calls)

	var (
		step      []reflect.Value
		exhausted bool
	)

	if compiled.kind == KindSequence {
		if s.cursor < len(compiled.steps) {
			step = compiled.steps[s.cursor]
			s.cursor++
		} else {
			exhausted = true
		}
	}
	s.mu.Unlock()

	s.scope.tracef("invoke %s call %d (%v)", s.target.path, callNum, compiled.kind)

	switch compiled.kind {
	case KindSequence:
		if exhausted {
			panic(&ExhaustedError{Target: s.target.path, Len: len(compiled.steps), Call: callNum})
		}

		return step
	case KindDerive:
		if variadic {
			return compiled.derive.CallSlice(args)
		}

		return compiled.derive.Call(args)
	case KindRaise:
		if !compiled.errOut {
			panic(compiled.err)
		}

		results := make([]reflect.Value, len(compiled.outs))
		for i, out := range compiled.outs {
			results[i] = reflect.Zero(out)
		}

		errVal := reflect.New(errorType).Elem()
		errVal.Set(reflect.ValueOf(compiled.err))
		results[len(results)-1] = errVal

		return results
	case KindReturn:
		return compiled.fixed
	default:
		panic("subst: unknown behavior " + compiled.kind.String())
	}
}

// swap replaces the behavior of an existing substitution, re-capturing the original if the
// substitution had already been restored.
func (s *Substitution) swap(compiled *plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = compiled
	s.cursor = 0

	if s.restored {
		s.capture()

		return
	}

	s.install()
}

func newSubstitution(scope *Scope, target Target, compiled *plan) *Substitution {
	sub := &Substitution{scope: scope, target: target, plan: compiled}

	sub.mu.Lock()
	sub.capture()
	sub.mu.Unlock()

	return sub
}

func flattenArgs(args []reflect.Value, variadic bool) []any {
	flat := make([]any, 0, len(args))

	for i, arg := range args {
		if variadic && i == len(args)-1 {
			for j := range arg.Len() {
				flat = append(flat, arg.Index(j).Interface())
			}

			continue
		}

		flat = append(flat, arg.Interface())
	}

	return flat
}
