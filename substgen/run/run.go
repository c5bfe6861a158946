// Package run implements the main logic for the substgen tool in a testable way.
package run

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	load "github.com/toejough/subst/substgen/run/1_load"
	collect "github.com/toejough/subst/substgen/run/2_collect"
	generate "github.com/toejough/subst/substgen/run/3_generate"
	output "github.com/toejough/subst/substgen/run/4_output"
)

// Exported variables.
var (
	ErrNoPackage   = errors.New("no package name")
	ErrTestPackage = errors.New("seams belong to production packages")
)

// FileSystem interface for mocking.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Run executes the substgen tool logic: it parses the package in the target directory,
// collects its seams, and writes a file declaring them. args are the process arguments,
// getEnv reads the go generate environment, and progress goes to out.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, out io.Writer) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	files, err := load.Dir(parsed.Dir, filepath.Base(parsed.Output))
	if err != nil {
		return err
	}

	pkgName := getEnv("GOPACKAGE")
	if pkgName == "" {
		pkgName = load.PackageName(files)
	}

	if pkgName == "" {
		return fmt.Errorf("%w: run substgen from go generate or in a directory with Go files", ErrNoPackage)
	}

	if strings.HasSuffix(pkgName, "_test") || strings.HasSuffix(getEnv("GOFILE"), "_test.go") {
		return fmt.Errorf("%w, not test package %s", ErrTestPackage, pkgName)
	}

	container := parsed.Container
	if container == "" {
		container = pkgName
	}

	containers, err := collect.Seams(files, container)
	if err != nil {
		return err
	}

	code, err := generate.Source(pkgName, containers)
	if err != nil {
		return err
	}

	return output.Write(code, filepath.Join(parsed.Dir, parsed.Output), fileSys, out)
}

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Container string `arg:"--container" help:"container name for package-level seams (defaults to the package name)"`
	Output    string `arg:"--output"    help:"file to write, relative to --dir"                                      default:"generated_seams.go"`
	Dir       string `arg:"--dir"       help:"package directory to scan"                                             default:"."`
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "substgen"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}
