package run_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/subst/substgen/run"
)

func TestRun_UATPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := filepath.Join("..", "..", "UAT", "seams", "c")
	fileSys := &memFileSystem{}

	var out bytes.Buffer

	err := run.Run([]string{"substgen", "--dir", dir}, goGenerateEnv("c", "c.go"), fileSys, &out)
	g.Expect(err).NotTo(HaveOccurred())

	written := filepath.Join(dir, "generated_seams.go")
	g.Expect(fileSys.files).To(HaveKey(written))
	g.Expect(fileSys.perms[written]).To(Equal(os.FileMode(0o600)))
	g.Expect(fileSys.files[written]).To(And(
		ContainSubstring("// Code generated by substgen. DO NOT EDIT."),
		ContainSubstring(`subst.Declare("c.C",`),
		ContainSubstring(`subst.Attr("CFunc", &cFunc),`),
		ContainSubstring(`subst.Attr("Prop", &prop),`),
	))
	g.Expect(out.String()).To(HaveSuffix(written + " written successfully.\n"))
}

func TestRun_PackageNameFromSource(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := writePackage(t, "clock.go", "package clock\n\nimport \"time\"\n\nvar Now = time.Now\n")
	fileSys := &memFileSystem{}

	err := run.Run([]string{"substgen", "--dir", dir, "--output", "seams.go"}, noEnv, fileSys, &bytes.Buffer{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fileSys.files[filepath.Join(dir, "seams.go")]).To(And(
		ContainSubstring("package clock"),
		ContainSubstring(`subst.Declare("clock",`),
		ContainSubstring(`subst.Attr("Now", &Now),`),
	))
}

func TestRun_ContainerFlag(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := writePackage(t, "clock.go", "package clock\n\nimport \"time\"\n\nvar Now = time.Now\n")
	fileSys := &memFileSystem{}

	err := run.Run(
		[]string{"substgen", "--dir", dir, "--container", "infra.clock"},
		goGenerateEnv("clock", "clock.go"), fileSys, &bytes.Buffer{},
	)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fileSys.files[filepath.Join(dir, "generated_seams.go")]).To(And(
		ContainSubstring("package clock"),
		ContainSubstring(`subst.Declare("infra.clock",`),
	))
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	withSeam := "package clock\n\nimport \"time\"\n\nvar Now = time.Now\n"

	cases := map[string]struct {
		src     string
		args    []string
		env     func(string) string
		fileErr error
		want    error
		message string
	}{
		"unknown flag": {
			src:     withSeam,
			args:    []string{"--frobnicate"},
			env:     noEnv,
			message: "failed to parse arguments",
		},
		"test package": {
			src:  withSeam,
			env:  goGenerateEnv("clock_test", "clock_test.go"),
			want: run.ErrTestPackage,
		},
		"test file": {
			src:  withSeam,
			env:  goGenerateEnv("clock", "clock_test.go"),
			want: run.ErrTestPackage,
		},
		"no seams": {
			src:     "package clock\n\nconst Hour = 60\n",
			env:     noEnv,
			message: "no seams to declare in package clock",
		},
		"parse error": {
			src:     "package clock\n\nvar = \n",
			env:     noEnv,
			message: "failed to parse",
		},
		"write error": {
			src:     withSeam,
			env:     noEnv,
			fileErr: errors.New("read-only file system"),
			message: "read-only file system",
		},
	}

	for name, testCase := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			dir := writePackage(t, "clock.go", testCase.src)
			args := append([]string{"substgen", "--dir", dir}, testCase.args...)

			err := run.Run(args, testCase.env, &memFileSystem{err: testCase.fileErr}, &bytes.Buffer{})
			g.Expect(err).To(HaveOccurred())

			if testCase.want != nil {
				g.Expect(err).To(MatchError(testCase.want))
			}

			if testCase.message != "" {
				g.Expect(err).To(MatchError(ContainSubstring(testCase.message)))
			}
		})
	}
}

func TestRun_NoPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	err := run.Run([]string{"substgen", "--dir", t.TempDir()}, noEnv, &memFileSystem{}, &bytes.Buffer{})
	g.Expect(err).To(MatchError(run.ErrNoPackage))
}

type memFileSystem struct {
	files map[string]string
	perms map[string]os.FileMode
	err   error
}

func (fs *memFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if fs.err != nil {
		return fs.err
	}

	if fs.files == nil {
		fs.files = make(map[string]string)
		fs.perms = make(map[string]os.FileMode)
	}

	fs.files[name] = string(data)
	fs.perms[name] = perm

	return nil
}

func goGenerateEnv(pkg, file string) func(string) string {
	return func(key string) string {
		switch key {
		case "GOPACKAGE":
			return pkg
		case "GOFILE":
			return file
		default:
			return ""
		}
	}
}

func noEnv(string) string { return "" }

func writePackage(t *testing.T, name, src string) string {
	t.Helper()

	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return dir
}
