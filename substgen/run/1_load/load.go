// Package load parses the production files of one package directory into DST.
package load

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Dir parses every non-test .go file in dir except skip (the generator's own output),
// in file-name order.
func Dir(dir string, skip string) ([]*dst.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == skip {
			continue
		}

		names = append(names, name)
	}

	slices.Sort(names)

	fset := token.NewFileSet()
	files := make([]*dst.File, 0, len(names))

	for _, name := range names {
		path := filepath.Join(dir, name)

		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}

		file, err := decorator.ParseFile(fset, path, src, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		files = append(files, file)
	}

	return files, nil
}

// PackageName returns the package clause shared by files, or "" if there are none.
func PackageName(files []*dst.File) string {
	for _, file := range files {
		if file.Name != nil {
			return file.Name.Name
		}
	}

	return ""
}
