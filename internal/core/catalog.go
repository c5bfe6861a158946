package core

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Attribute names one seam of a container: the attribute name and a pointer to the variable
// that holds the seam.
type Attribute struct {
	Name string
	Ptr  any
}

// Catalog maps dotted paths to seam variables. Packages publish their seams into the default
// catalog with Declare, usually from a generated init function.
type Catalog struct {
	mu         sync.RWMutex
	containers map[string]map[string]reflect.Value
	paths      map[targetKey]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		containers: make(map[string]map[string]reflect.Value),
		paths:      make(map[targetKey]string),
	}
}

// Containers lists the declared container names, sorted.
func (c *Catalog) Containers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.containers))
	for name := range c.containers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Declare adds attrs to container, creating the container if needed. Declaring an attribute
// twice is allowed only for the same pointer. Invalid names or pointers panic: they are
// programming errors in the declaring package.
func (c *Catalog) Declare(container string, attrs ...Attribute) {
	if container == "" || strings.HasPrefix(container, ".") || strings.HasSuffix(container, ".") {
		panic(fmt.Sprintf("subst: invalid container name %q", container))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.containers[container]
	if !ok {
		table = make(map[string]reflect.Value)
		c.containers[container] = table
	}

	for _, attr := range attrs {
		if attr.Name == "" || strings.Contains(attr.Name, ".") {
			panic(fmt.Sprintf("subst: invalid attribute name %q in container %q", attr.Name, container))
		}

		ptr := reflect.ValueOf(attr.Ptr)
		if !ptr.IsValid() || ptr.Kind() != reflect.Pointer || ptr.IsNil() {
			panic(fmt.Sprintf("subst: attribute %s.%s must be a non-nil pointer, got %T", container, attr.Name, attr.Ptr))
		}

		if existing, ok := table[attr.Name]; ok {
			if existing.Pointer() != ptr.Pointer() || existing.Type() != ptr.Type() {
				panic(fmt.Sprintf("subst: attribute %s.%s already declared for a different variable", container, attr.Name))
			}

			continue
		}

		table[attr.Name] = ptr
		c.paths[keyOf(ptr)] = container + "." + attr.Name
	}
}

// PathOf returns the dotted path under which ptr was declared.
func (c *Catalog) PathOf(ptr any) (string, bool) {
	val := reflect.ValueOf(ptr)
	if !val.IsValid() || val.Kind() != reflect.Pointer || val.IsNil() {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	path, ok := c.paths[keyOf(val)]

	return path, ok
}

// Resolve looks up a dotted path: everything before the last dot names the container, the
// last segment names the attribute.
func (c *Catalog) Resolve(path string) (Target, error) {
	dot := strings.LastIndex(path, ".")
	if dot <= 0 || dot == len(path)-1 {
		return Target{}, &ResolutionError{Path: path, Reason: "want <container>.<attribute>"}
	}

	container, name := path[:dot], path[dot+1:]

	c.mu.RLock()
	defer c.mu.RUnlock()

	table, ok := c.containers[container]
	if !ok {
		return Target{}, &ResolutionError{Path: path, Reason: fmt.Sprintf("container %q is not declared", container)}
	}

	ptr, ok := table[name]
	if !ok {
		return Target{}, &ResolutionError{
			Path:   path,
			Reason: fmt.Sprintf("container %q has no attribute %q", container, name),
		}
	}

	return Target{path: path, ptr: ptr}, nil
}

// Attr pairs an attribute name with a pointer to its seam variable.
func Attr(name string, ptr any) Attribute {
	return Attribute{Name: name, Ptr: ptr}
}

// Declare adds attrs to container in the default catalog.
func Declare(container string, attrs ...Attribute) {
	DefaultCatalog.Declare(container, attrs...)
}

// Resolve looks up path in the default catalog.
func Resolve(path string) (Target, error) {
	return DefaultCatalog.Resolve(path)
}

// DefaultCatalog is the process-wide catalog used by Declare and Resolve.
//
//nolint:gochecknoglobals // process-wide seam catalog is the point
var DefaultCatalog = NewCatalog()
