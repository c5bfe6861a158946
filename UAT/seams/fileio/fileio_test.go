// Package fileio_test substitutes the file-open seam for one file name and passes every
// other name through to the real implementation.
package fileio_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/subst"
	"github.com/toejough/subst/UAT/seams/fileio"
	"github.com/toejough/subst/match"
)

// memFile is an in-memory fileio.File.
type memFile struct {
	bytes.Buffer

	closed bool
}

func (m *memFile) Close() error {
	m.closed = true

	return nil
}

func TestOpen_FakeFileForOneName(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	realPath := filepath.Join(dir, "real.txt")
	g.Expect(os.WriteFile(realPath, []byte("on disk"), 0o600)).To(Succeed())

	fakePath := filepath.Join(dir, "qwertyuiop")
	fake := &memFile{}

	var sub *subst.Substitution

	sub = subst.Patch(t, "fileio.Open", subst.Derive(func(name string) (fileio.File, error) {
		if name == fakePath {
			return fake, nil
		}

		return subst.Original[func(string) (fileio.File, error)](sub)(name)
	}))

	got, err := fileio.WriteThenRead(fakePath, "T")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("T"))
	g.Expect(fake.closed).To(BeTrue())

	got, err = fileio.ReadAll(realPath)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("on disk"))

	_, err = os.Stat(fakePath)
	g.Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue(), "the fake file never reaches the disk")

	sub.ExpectCallCount(2)
	sub.ExpectCalledWith(fakePath)
	sub.ExpectCalledWith(match.Satisfy(func(name string) error {
		if filepath.Base(name) != "real.txt" {
			return errors.New("not the real file")
		}

		return nil
	}))
}

func TestOpen_RaisedErrorIsWrappedByCaller(t *testing.T) {
	g := NewWithT(t)

	subst.Patch(t, "fileio.Open", subst.Raise(fs.ErrPermission))

	_, err := fileio.ReadAll("anything")
	g.Expect(err).To(MatchError(fs.ErrPermission))
	g.Expect(err.Error()).To(Equal("open anything: permission denied"))
}

func TestOpen_SequenceOfFiles(t *testing.T) {
	g := NewWithT(t)

	first := &memFile{}
	first.WriteString("first")

	second := &memFile{}
	second.WriteString("second")

	subst.Patch(t, "fileio.Open", subst.Sequence(
		subst.Results{first, nil},
		subst.Results{second, nil},
		subst.Results{nil, fs.ErrNotExist},
	))

	g.Expect(fileio.ReadAll("x")).To(Equal("first"))
	g.Expect(fileio.ReadAll("x")).To(Equal("second"))

	_, err := fileio.ReadAll("x")
	g.Expect(err).To(MatchError(fs.ErrNotExist))
}
