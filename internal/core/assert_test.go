package core_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/subst/internal/core"
)

func TestExpectCalledWith_MatchesValuesAndMatchers(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &fakeReporter{}
	send := func(channel string, retries int) error { return nil }
	scope := core.NewScope(core.WithReporter(reporter))
	defer scope.Close()

	sub, err := scope.Register(mustTargetNamed(t, &send, "slack.Send"), core.Return(nil))
	g.Expect(err).NotTo(HaveOccurred())

	_ = send("#ops", 3)
	_ = send("#dev", 1)

	sub.ExpectCalled()
	sub.ExpectCallCount(2)
	sub.ExpectCalledWith("#dev", 1)
	sub.ExpectCalledWith(HavePrefix("#o"), BeNumerically(">", 2))

	g.Expect(reporter.failed()).To(BeFalse(), reporter.lastFailure())
}

func TestExpectCalledWith_ReportsMismatch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &fakeReporter{}
	send := func(channel string) error { return nil }
	scope := core.NewScope(core.WithReporter(reporter))
	defer scope.Close()

	sub, err := scope.Register(mustTargetNamed(t, &send, "slack.Send"), core.Return(nil))
	g.Expect(err).NotTo(HaveOccurred())

	sub.ExpectCalledWith("#ops")
	g.Expect(reporter.lastFailure()).To(Equal(`slack.Send: expected a call with ("#ops"), got no calls`))

	_ = send("#dev")

	sub.ExpectCalledWith("#ops")
	g.Expect(reporter.lastFailure()).To(ContainSubstring("slack.Send: no call of 1 matched"))
	g.Expect(reporter.lastFailure()).To(ContainSubstring(`-("#ops")`))
	g.Expect(reporter.lastFailure()).To(ContainSubstring(`+("#dev")`))

	sub.ExpectCalledWith("#dev", "extra")
	g.Expect(reporter.lastFailure()).To(ContainSubstring("expected 2 args, got 1"))
}

func TestExpectCallCount_Failures(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reporter := &fakeReporter{}
	fn := func() {}
	scope := core.NewScope(core.WithReporter(reporter))
	defer scope.Close()

	sub, err := scope.Register(mustTargetNamed(t, &fn, "pkg.Fn"), core.Return())
	g.Expect(err).NotTo(HaveOccurred())

	sub.ExpectNotCalled()
	g.Expect(reporter.failed()).To(BeFalse())

	sub.ExpectCalled()
	g.Expect(reporter.lastFailure()).To(Equal("pkg.Fn: expected at least one call, got none"))

	fn()

	sub.ExpectCallCount(2)
	g.Expect(reporter.lastFailure()).To(Equal("pkg.Fn: expected 2 calls, got 1"))

	sub.ExpectNotCalled()
	g.Expect(reporter.lastFailure()).To(Equal("pkg.Fn: expected no calls, got 1"))
}

func TestExpect_WithoutReporterPanics(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fn := func() {}
	scope := core.NewScope()
	defer scope.Close()

	sub, err := scope.Register(mustTarget(t, &fn), core.Return())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(scope.Reporter()).To(BeNil())

	g.Expect(sub.ExpectCalled).To(Panic())
}

type evenMatcher struct{}

func (evenMatcher) FailureMessage(actual any) string {
	return "not even"
}

func (evenMatcher) Match(actual any) (bool, error) {
	n, ok := actual.(int)
	if !ok {
		return false, errors.New("not an int")
	}

	return n%2 == 0, nil
}

func TestMatchValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ok, msg := core.MatchValue(4, evenMatcher{})
	g.Expect(ok).To(BeTrue())
	g.Expect(msg).To(BeEmpty())

	ok, msg = core.MatchValue(3, evenMatcher{})
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal("not even"))

	ok, msg = core.MatchValue("x", evenMatcher{})
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal("not an int"))

	ok, msg = core.MatchValue([]int{1}, []int{1})
	g.Expect(ok).To(BeTrue())
	g.Expect(msg).To(BeEmpty())

	ok, msg = core.MatchValue("a", "b")
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal(`expected "b", got "a"`))
}

func TestMatchArgs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ok, _ := core.MatchArgs([]any{1, "a"}, []any{1, "a"})
	g.Expect(ok).To(BeTrue())

	ok, msg := core.MatchArgs([]any{1, "a"}, []any{1, "b"})
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal(`arg 1: expected "b", got "a"`))

	ok, msg = core.MatchArgs([]any{1}, []any{1, "b"})
	g.Expect(ok).To(BeFalse())
	g.Expect(msg).To(Equal("expected 2 args, got 1"))
}
