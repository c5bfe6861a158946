package core

import (
	"fmt"
	"reflect"
)

// Matcher is satisfied by match.BeAny, match.Satisfy and any gomega matcher.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// MatchArgs checks a recorded call against expected arguments, position by position.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchArgs(actual, expected []any) (bool, string) {
	if len(actual) != len(expected) {
		return false, fmt.Sprintf("expected %d args, got %d", len(expected), len(actual))
	}

	for i := range expected {
		ok, msg := MatchValue(actual[i], expected[i])
		if !ok {
			return false, fmt.Sprintf("arg %d: %s", i, msg)
		}
	}

	return true, ""
}

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise, uses reflect.DeepEqual for comparison.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %#v, got %#v", expected, actual)
}
