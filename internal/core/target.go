package core

import (
	"fmt"
	"reflect"
)

// Target identifies one seam variable. The zero Target is invalid.
type Target struct {
	path string
	ptr  reflect.Value
}

// TargetOf builds a Target from a pointer to a variable. An empty path is replaced by the
// variable's catalog path if it has one, or a description of its type and address.
func TargetOf(ptr any, path string) (Target, error) {
	val := reflect.ValueOf(ptr)
	if !val.IsValid() || val.Kind() != reflect.Pointer || val.IsNil() {
		return Target{}, &ResolutionError{Path: path, Reason: fmt.Sprintf("need a non-nil pointer, got %T", ptr)}
	}

	if path == "" {
		if declared, ok := DefaultCatalog.PathOf(ptr); ok {
			path = declared
		} else {
			path = fmt.Sprintf("(%v)@%#x", val.Type(), val.Pointer())
		}
	}

	return Target{path: path, ptr: val}, nil
}

// Path is the dotted path or description used in messages.
func (t Target) Path() string {
	return t.path
}

// Type is the type of the seam variable.
func (t Target) Type() reflect.Type {
	return t.ptr.Type().Elem()
}

func (t Target) key() targetKey {
	return keyOf(t.ptr)
}

func (t Target) slot() reflect.Value {
	return t.ptr.Elem()
}

func (t Target) String() string {
	return t.path
}

// targetKey identifies a variable by address and type, so that a struct and its first field
// are different targets.
type targetKey struct {
	addr uintptr
	typ  reflect.Type
}

func keyOf(ptr reflect.Value) targetKey {
	return targetKey{addr: ptr.Pointer(), typ: ptr.Type()}
}
