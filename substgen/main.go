// substgen writes a generated_seams.go file that declares a package's seams to subst.
// To use it, install it with `go install github.com/toejough/subst/substgen@latest` and add
// a `//go:generate substgen` comment to the package. Every package-level variable becomes a
// seam named <package>.<Var>; `//subst:attr Type.Name` files a variable under <package>.Type
// instead, and `//subst:ignore` leaves it out.
package main

import (
	"fmt"
	"os"

	"github.com/toejough/subst/substgen/run"
)

// main is the entry point of the substgen tool.
func main() {
	err := run.Run(os.Args, os.Getenv, &realFileSystem{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements run.FileSystem using os package.
type realFileSystem struct{}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}
