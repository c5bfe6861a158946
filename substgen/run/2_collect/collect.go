// Package collect finds the seams of a package: its package-level variables, grouped into
// containers according to //subst: directives.
package collect

import (
	"errors"
	"fmt"
	"go/token"
	"slices"
	"strings"

	"github.com/dave/dst"
)

// Exported variables.
var (
	ErrBadDirective  = errors.New("bad subst directive")
	ErrDuplicateSeam = errors.New("duplicate seam")
	ErrImportClash   = errors.New("package-level name clashes with the generated subst import")
)

// ImportName is the name the generated file imports the subst package under. No
// package-level declaration may use it.
const ImportName = "subst"

// Container is a dotted container name and the seams declared under it.
type Container struct {
	Name  string
	Seams []Seam
}

// Seam maps an attribute name to the package variable that holds it.
type Seam struct {
	Name string
	Var  string
}

// Seams walks the package-level var declarations of files. Plain variables land in
// container pkg under their own name; //subst:attr Type.Name moves one to pkg.Type; and
// //subst:ignore skips it. Containers and seams come back sorted.
func Seams(files []*dst.File, pkg string) ([]Container, error) {
	byContainer := make(map[string]map[string]string)

	for _, file := range files {
		err := checkImportClash(file)
		if err != nil {
			return nil, err
		}

		for _, decl := range file.Decls {
			gen, ok := decl.(*dst.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}

			declDirs, err := parseDirectives(gen.Decs.Start)
			if err != nil {
				return nil, err
			}

			for i, spec := range gen.Specs {
				valueSpec, ok := spec.(*dst.ValueSpec)
				if !ok {
					continue
				}

				decorations := valueSpec.Decs.Start
				if i == 0 {
					decorations = append(slices.Clone(gen.Decs.Lparen), decorations...)
				}

				specDirs, err := parseDirectives(decorations)
				if err != nil {
					return nil, err
				}

				err = addSpec(byContainer, pkg, valueSpec, declDirs.merge(specDirs))
				if err != nil {
					return nil, err
				}
			}
		}
	}

	return sortedContainers(byContainer), nil
}

// directives holds the //subst: comments that apply to one var spec.
type directives struct {
	ignore bool
	attr   string
}

func (d directives) merge(inner directives) directives {
	merged := d
	if inner.ignore {
		merged.ignore = true
	}

	if inner.attr != "" {
		merged.attr = inner.attr
	}

	return merged
}

func addSpec(byContainer map[string]map[string]string, pkg string, spec *dst.ValueSpec, dirs directives) error {
	if dirs.ignore {
		return nil
	}

	if dirs.attr != "" && len(spec.Names) != 1 {
		return fmt.Errorf("%w: //subst:attr %s applies to %d variables", ErrBadDirective, dirs.attr, len(spec.Names))
	}

	for _, ident := range spec.Names {
		if ident.Name == "_" {
			continue
		}

		container, name := pkg, ident.Name

		if dirs.attr != "" {
			container, name = placeAttr(pkg, dirs.attr)
		}

		seams, ok := byContainer[container]
		if !ok {
			seams = make(map[string]string)
			byContainer[container] = seams
		}

		if existing, ok := seams[name]; ok {
			return fmt.Errorf("%w: %s.%s is declared by both %s and %s", ErrDuplicateSeam, container, name, existing, ident.Name)
		}

		seams[name] = ident.Name
	}

	return nil
}

func checkImportClash(file *dst.File) error {
	for _, decl := range file.Decls {
		var names []string

		switch decl := decl.(type) {
		case *dst.FuncDecl:
			if decl.Recv == nil {
				names = append(names, decl.Name.Name)
			}
		case *dst.GenDecl:
			for _, spec := range decl.Specs {
				switch spec := spec.(type) {
				case *dst.ValueSpec:
					for _, ident := range spec.Names {
						names = append(names, ident.Name)
					}
				case *dst.TypeSpec:
					names = append(names, spec.Name.Name)
				}
			}
		}

		if slices.Contains(names, ImportName) {
			return fmt.Errorf("%w: rename %q in package %s", ErrImportClash, ImportName, file.Name.Name)
		}
	}

	return nil
}

func parseDirectives(decorations dst.Decorations) (directives, error) {
	var dirs directives

	for _, comment := range decorations {
		body, ok := strings.CutPrefix(comment, "//subst:")
		if !ok {
			continue
		}

		fields := strings.Fields(body)

		switch {
		case len(fields) == 1 && fields[0] == "ignore":
			dirs.ignore = true
		case len(fields) == 2 && fields[0] == "attr" && validAttr(fields[1]):
			dirs.attr = fields[1]
		default:
			return directives{}, fmt.Errorf("%w: %q", ErrBadDirective, comment)
		}
	}

	return dirs, nil
}

// placeAttr splits "Type.Name" into container pkg.Type and attribute Name; a bare "Name"
// renames the attribute within pkg.
func placeAttr(pkg, attr string) (string, string) {
	dot := strings.LastIndex(attr, ".")
	if dot < 0 {
		return pkg, attr
	}

	return pkg + "." + attr[:dot], attr[dot+1:]
}

func sortedContainers(byContainer map[string]map[string]string) []Container {
	containers := make([]Container, 0, len(byContainer))

	for name, seams := range byContainer {
		container := Container{Name: name, Seams: make([]Seam, 0, len(seams))}
		for attr, variable := range seams {
			container.Seams = append(container.Seams, Seam{Name: attr, Var: variable})
		}

		slices.SortFunc(container.Seams, func(a, b Seam) int { return strings.Compare(a.Name, b.Name) })
		containers = append(containers, container)
	}

	slices.SortFunc(containers, func(a, b Container) int { return strings.Compare(a.Name, b.Name) })

	return containers
}

func validAttr(attr string) bool {
	for part := range strings.SplitSeq(attr, ".") {
		if !token.IsIdentifier(part) {
			return false
		}
	}

	return true
}
