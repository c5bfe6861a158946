// Package match provides argument matchers for subst call assertions.
// Matchers are duck-typed to gomega.GomegaMatcher, so both can be mixed:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/toejough/subst/match"
//	)
//
//	sub.ExpectCalledWith(BeAny, HavePrefix("#ops"), OneOf(1, 2, 3))
package match

import (
	"errors"
	"fmt"
	"reflect"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// BeAny is a matcher that matches any value.
// Useful when you don't care about a particular argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// OneOf matches a value deeply equal to any of the candidates.
func OneOf(candidates ...any) Matcher {
	return oneOfMatcher{candidates: candidates}
}

// Satisfy returns a matcher that uses a predicate function to check for a match.
// The predicate should return nil if the value matches, or an error describing
// the mismatch if it does not.
//
// Example:
//
//	sub.ExpectCalledWith(Satisfy(func(path string) error {
//	    if !strings.HasSuffix(path, ".txt") { return fmt.Errorf("not a text file: %s", path) }
//	    return nil
//	}))
func Satisfy[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

type anyMatcher struct{}

func (anyMatcher) FailureMessage(any) string {
	return ""
}

func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

type oneOfMatcher struct {
	candidates []any
}

func (m oneOfMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("value %#v is not one of %#v", actual, m.candidates)
}

func (m oneOfMatcher) Match(actual any) (bool, error) {
	for _, candidate := range m.candidates {
		if reflect.DeepEqual(actual, candidate) {
			return true, nil
		}
	}

	return false, nil
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)
	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}
