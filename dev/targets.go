//go:build targ

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/file"
	"github.com/toejough/targ/sh"
)

// Build builds the local substgen binary.
func Build() error {
	fmt.Println("Building substgen...")

	if err := os.MkdirAll("bin", 0o755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	return sh.Run("go", "build", "-o", "bin/substgen", "./substgen")
}

// Check runs all checks & fixes on the code, in order of correctness.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(
		Tidy,
		FixImports,
		CheckGenerated,
		CheckCoverage,
		ReorderDecls,
		Lint,
	)
}

// CheckCoverage checks that function coverage meets the minimum threshold.
func CheckCoverage() error {
	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	out, err := output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}

	const threshold = 80.0

	var low []string

	for line := range strings.SplitSeq(out, "\n") {
		if line == "" || strings.Contains(line, "total:") || strings.Contains(line, "generated_") ||
			strings.Contains(line, "main.go") {
			continue
		}

		fields := strings.Fields(line)

		percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[len(fields)-1], "%"), 64)
		if err != nil {
			return fmt.Errorf("failed to parse coverage line %q: %w", line, err)
		}

		if percent < threshold {
			low = append(low, line)
		}
	}

	if len(low) > 0 {
		fmt.Println(strings.Join(low, "\n"))

		return fmt.Errorf("%d function(s) below %.0f%% coverage", len(low), threshold)
	}

	return nil
}

// CheckForFail runs all checks on the code for determining whether any fail.
func CheckForFail() error {
	fmt.Println("Checking...")

	return targ.Deps(
		ReorderDeclsCheck,
		CheckGenerated,
		LintForFail,
		TestForFail,
	)
}

// CheckGenerated regenerates every generated_seams.go into memory and fails on drift from
// the checked-in copy.
func CheckGenerated() error {
	fmt.Println("Checking generated seam declarations...")

	if err := targ.Deps(Build); err != nil {
		return err
	}

	files, err := generatedFiles(".")
	if err != nil {
		return err
	}

	drifted := 0

	for _, path := range files {
		want, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		tmp, err := os.MkdirTemp("", "substgen")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}

		got, err := regenerate(filepath.Dir(path), tmp)

		_ = os.RemoveAll(tmp)

		if err != nil {
			return err
		}

		if diff := textdiff.Unified(path+" (checked in)", path+" (generated)", string(want), got); diff != "" {
			fmt.Printf("\n%s\n", diff)

			drifted++
		}
	}

	if drifted > 0 {
		return fmt.Errorf("%d generated file(s) out of date, run 'targ generate'", drifted)
	}

	fmt.Printf("All %d generated file(s) are up to date.\n", len(files))

	return nil
}

// Clean cleans up the dev env.
func Clean() {
	fmt.Println("Cleaning...")

	_ = os.Remove("coverage.out")
	_ = os.RemoveAll("bin")
}

// FixImports fixes imports.
func FixImports() error {
	fmt.Println("Fixing imports...")
	return sh.Run("goimports", "-w", ".")
}

// Generate runs go generate on all packages using the locally-built substgen binary.
func Generate() error {
	fmt.Println("Generating...")

	if err := targ.Deps(Build); err != nil {
		return err
	}

	binDir, err := filepath.Abs("bin")
	if err != nil {
		return fmt.Errorf("failed to get absolute path for bin: %w", err)
	}

	cmd := exec.Command("go", "generate", "./...")
	cmd.Env = append(os.Environ(), "PATH="+binDir+string(filepath.ListSeparator)+os.Getenv("PATH"))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// Lint lints the codebase.
func Lint() error {
	fmt.Println("Linting...")
	return sh.Run("golangci-lint", "run")
}

// LintForFail lints the codebase purely to find out whether anything fails.
func LintForFail() error {
	fmt.Println("Linting to check for overall pass/fail...")

	return sh.Run(
		"golangci-lint", "run",
		"--fix=false",
		"--max-issues-per-linter=1",
		"--max-same-issues=1",
		"--allow-parallel-runners",
	)
}

// Mutate runs the mutation tests.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(TestForFail); err != nil {
		return err
	}

	return sh.Run("go", "test", "-timeout=6000s", "-tags=mutation", "-run=TestMutation", ".")
}

// ReorderDecls reorders declarations in Go files per conventions.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	files, err := sourceFiles(".")
	if err != nil {
		return err
	}

	reordered := 0

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		ordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", path, err)

			continue
		}

		if ordered == string(content) {
			continue
		}

		if err := os.WriteFile(path, []byte(ordered), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("  Reordered: %s\n", path)

		reordered++
	}

	fmt.Printf("Reordered %d file(s).\n", reordered)

	return nil
}

// ReorderDeclsCheck reports files whose declarations are out of order without modifying them.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	files, err := sourceFiles(".")
	if err != nil {
		return err
	}

	outOfOrder := 0

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		ordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", path, err)

			continue
		}

		if diff := textdiff.Unified(path+" (current)", path+" (reordered)", string(content), ordered); diff != "" {
			fmt.Printf("\n%s\n", diff)

			outOfOrder++
		}
	}

	if outOfOrder > 0 {
		return fmt.Errorf("%d file(s) need reordering, run 'targ reorder-decls'", outOfOrder)
	}

	fmt.Printf("All files are correctly ordered (%d files processed).\n", len(files))

	return nil
}

// Test runs the unit tests with race detection and coverage.
func Test() error {
	fmt.Println("Running unit tests...")

	return sh.Run(
		"go", "test",
		"-timeout=2m",
		"-race",
		"-count=1",
		"-coverprofile=coverage.out",
		"-coverpkg=./,./internal/...,./match/...,./substgen/...",
		"./...",
	)
}

// TestForFail runs the unit tests purely to find out whether any fail.
func TestForFail() error {
	fmt.Println("Running unit tests for overall pass/fail...")
	return sh.Run("go", "test", "-timeout=30s", "-failfast", "./...")
}

// Tidy tidies up go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// Trace runs the UAT tests with scope tracing routed to the test log.
func Trace() error {
	fmt.Println("Running UAT with SUBST_TRACE=1...")

	cmd := exec.Command("go", "test", "-count=1", "-v", "./UAT/...")
	cmd.Env = append(os.Environ(), "SUBST_TRACE=1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// Watch re-runs Check whenever files change.
func Watch(ctx context.Context) error {
	fmt.Println("Watching...")

	return file.Watch(ctx, []string{"**/*.go"}, file.WatchOptions{}, func(changes file.ChangeSet) error {
		if !hasRelevantChanges(changes) {
			return nil
		}

		fmt.Println("Change detected...")

		targ.ResetDeps()

		if err := Check(); err != nil {
			fmt.Println("continuing to watch after check failure (see errors above)")
		} else {
			fmt.Println("continuing to watch after all checks passed!")
		}

		return nil
	})
}

// generatedFiles finds every generated_seams.go under root.
func generatedFiles(root string) ([]string, error) {
	var files []string

	err := walkGo(root, func(path string) {
		if filepath.Base(path) == "generated_seams.go" {
			files = append(files, path)
		}
	})

	return files, err
}

// hasRelevantChanges returns true if the changeset contains files we care about.
func hasRelevantChanges(changes file.ChangeSet) bool {
	all := append(append(changes.Added, changes.Removed...), changes.Modified...)

	for _, path := range all {
		if strings.Contains(path, "generated_") || strings.HasSuffix(path, "coverage.out") {
			continue
		}

		return true
	}

	return false
}

func isGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 200)

	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return bytes.Contains(buf[:n], []byte("DO NOT EDIT")), nil
}

// output runs a command and captures stdout only (stderr goes to os.Stderr).
func output(command string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := exec.Command(command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	return strings.TrimSuffix(buf.String(), "\n"), err
}

// regenerate runs the built substgen against dir, writing into tmp, and returns the result.
func regenerate(dir, tmp string) (string, error) {
	pkg, err := output("go", "list", "-f", "{{.Name}}", "./"+dir)
	if err != nil {
		return "", fmt.Errorf("failed to find package name of %s: %w", dir, err)
	}

	out := filepath.Join(tmp, "generated_seams.go")

	cmd := exec.Command("bin/substgen", "--dir", dir, "--output", out)
	cmd.Env = append(os.Environ(), "GOPACKAGE="+pkg)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("substgen failed for %s: %w", dir, err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return "", fmt.Errorf("failed to read regenerated %s: %w", out, err)
	}

	return string(data), nil
}

// sourceFiles lists the hand-written Go files under root.
func sourceFiles(root string) ([]string, error) {
	var (
		files   []string
		openErr error
	)

	err := walkGo(root, func(path string) {
		generated, err := isGeneratedFile(path)
		if err != nil {
			openErr = err

			return
		}

		if !generated {
			files = append(files, path)
		}
	})
	if err != nil {
		return nil, err
	}

	return files, openErr
}

// walkGo calls fn for each .go file under root, skipping hidden and underscore directories.
func walkGo(root string, fn func(path string)) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("unable to walk %s: %w", path, err)
		}

		name := entry.Name()

		if entry.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(name) == ".go" {
			fn(path)
		}

		return nil
	})
}
