// Package c shows method and property seams: C's methods delegate to package variables that
// substgen files under the c.C container.
package c

//go:generate ../../../bin/substgen

// C is a small type with one method and one read-only property.
type C struct {
	label string
}

// New returns a C.
func New(label string) *C {
	return &C{label: label}
}

// CFunc is a method routed through the C.CFunc seam.
func (c *C) CFunc() string {
	return cFunc(c)
}

// Label returns the label given to New.
func (c *C) Label() string {
	return c.label
}

// Prop is a property accessor routed through the C.Prop seam.
func (c *C) Prop() string {
	return prop(c)
}

// unexported variables.
//
//nolint:gochecknoglobals // seams
var (
	//subst:attr C.CFunc
	cFunc = func(*C) string {
		return "called C.c_func"
	}
	//subst:attr C.Prop
	prop = func(*C) string {
		return "prop C"
	}
)
