package match_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/subst/match"
)

func TestBeAny(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, value := range []any{42, nil, "x", []int{1}} {
		ok, err := match.BeAny.Match(value)
		g.Expect(ok).To(BeTrue())
		g.Expect(err).NotTo(HaveOccurred())
	}

	g.Expect(match.BeAny.FailureMessage(42)).To(BeEmpty())
}

func TestOneOf(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	matcher := match.OneOf("r", "rw", []string{"a"})

	ok, err := matcher.Match("rw")
	g.Expect(ok).To(BeTrue())
	g.Expect(err).NotTo(HaveOccurred())

	ok, _ = matcher.Match([]string{"a"})
	g.Expect(ok).To(BeTrue())

	ok, _ = matcher.Match("w")
	g.Expect(ok).To(BeFalse())
	g.Expect(matcher.FailureMessage("w")).To(Equal(`value "w" is not one of []interface {}{"r", "rw", []string{"a"}}`))
}

func TestSatisfy(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	textFile := match.Satisfy(func(path string) error {
		if !strings.HasSuffix(path, ".txt") {
			return errors.New("not a text file")
		}

		return nil
	})

	ok, err := textFile.Match("notes.txt")
	g.Expect(ok).To(BeTrue())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(textFile.FailureMessage("notes.txt")).To(Equal("value notes.txt does not satisfy predicate"))

	ok, err = textFile.Match("image.png")
	g.Expect(ok).To(BeFalse())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(textFile.FailureMessage("image.png")).To(Equal("value image.png does not satisfy predicate: not a text file"))

	ok, err = textFile.Match(42)
	g.Expect(ok).To(BeFalse())
	g.Expect(err).To(MatchError(ContainSubstring("type mismatch: expected string, got int")))
}
