package core

import (
	"fmt"
	"strings"

	"github.com/akedrou/textdiff"
)

// ExpectCallCount fails the scope's test unless the substitute was invoked exactly n times.
func (s *Substitution) ExpectCallCount(n int) {
	t := s.reporterOrPanic()
	t.Helper()

	if got := s.CallCount(); got != n {
		t.Fatalf("%s: expected %d calls, got %d", s.target.path, n, got)
	}
}

// ExpectCalled fails the scope's test unless the substitute was invoked at least once.
func (s *Substitution) ExpectCalled() {
	t := s.reporterOrPanic()
	t.Helper()

	if !s.Called() {
		t.Fatalf("%s: expected at least one call, got none", s.target.path)
	}
}

// ExpectCalledWith fails the scope's test unless some recorded call matches expected.
// Expected values are compared with reflect.DeepEqual unless they are Matchers.
func (s *Substitution) ExpectCalledWith(expected ...any) {
	t := s.reporterOrPanic()
	t.Helper()

	calls := s.Calls()
	if len(calls) == 0 {
		t.Fatalf("%s: expected a call with %s, got no calls", s.target.path, formatArgs(expected))

		return
	}

	var lastMsg string

	for _, call := range calls {
		ok, msg := MatchArgs(call.Args, expected)
		if ok {
			return
		}

		lastMsg = msg
	}

	last := calls[len(calls)-1]
	diff := textdiff.Unified("expected", "last call", formatArgs(expected)+"\n", formatArgs(last.Args)+"\n")

	t.Fatalf("%s: no call of %d matched (%s)\n%s", s.target.path, len(calls), lastMsg, diff)
}

// ExpectNotCalled fails the scope's test if the substitute was invoked.
func (s *Substitution) ExpectNotCalled() {
	t := s.reporterOrPanic()
	t.Helper()

	if got := s.CallCount(); got != 0 {
		t.Fatalf("%s: expected no calls, got %d", s.target.path, got)
	}
}

func (s *Substitution) reporterOrPanic() TestReporter {
	if s.scope.reporter == nil {
		panic(fmt.Sprintf("subst: %s belongs to a scope without a TestReporter; create it with WithReporter", s.target.path))
	}

	return s.scope.reporter
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%#v", arg)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
