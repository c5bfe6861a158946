// Package generate renders the init file that declares a package's seams.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"text/template"

	collect "github.com/toejough/subst/substgen/run/2_collect"
)

// ErrNoContainers is returned when there is nothing to declare.
var ErrNoContainers = errors.New("no seams to declare")

// Source renders the declaration file for pkgName and formats it with gofmt.
func Source(pkgName string, containers []collect.Container) (string, error) {
	if len(containers) == 0 {
		return "", fmt.Errorf("%w in package %s", ErrNoContainers, pkgName)
	}

	var buf bytes.Buffer

	err := declareTmpl.Execute(&buf, declareData{Package: pkgName, Containers: containers})
	if err != nil {
		return "", fmt.Errorf("failed to render declarations: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to format declarations: %w", err)
	}

	return string(formatted), nil
}

type declareData struct {
	Package    string
	Containers []collect.Container
}

const declareText = `// Code generated by substgen. DO NOT EDIT.

package {{.Package}}

import "github.com/toejough/subst"

//nolint:gochecknoinits // seams are declared at package init
func init() {
{{- range .Containers}}
	subst.Declare({{printf "%q" .Name}},
{{- range .Seams}}
		subst.Attr({{printf "%q" .Name}}, &{{.Var}}),
{{- end}}
	)
{{- end}}
}
`

//nolint:gochecknoglobals // parsed once from a constant
var declareTmpl = template.Must(template.New("declare").Parse(declareText))
