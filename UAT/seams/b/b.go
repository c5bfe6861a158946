// Package b consumes package a two ways: BFunc looks a.AFunc up at call time, while
// BFunc2 calls a copy of it taken when b was initialized.
package b

import "github.com/toejough/subst/UAT/seams/a"

//go:generate ../../../bin/substgen

// AFunc is b's own copy of a.AFunc, bound at package initialization.
//
//nolint:gochecknoglobals // seam
var AFunc = a.AFunc

// BFunc calls a.AFunc through package a.
func BFunc() string {
	return a.AFunc()
}

// BFunc2 calls b's copy.
func BFunc2() string {
	return AFunc()
}
