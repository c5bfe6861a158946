// Package a holds a single function seam. Callers that go through the package variable at
// call time observe substitutions.
package a

//go:generate ../../../bin/substgen

// AFunc is a seam: production code calls it through the variable.
//
//nolint:gochecknoglobals // seam
var AFunc = func() string {
	return "called a_func"
}
