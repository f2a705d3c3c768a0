package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
	now time.Time
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *BreakerSuite) breaker(opts ...Option) *Breaker {
	opts = append([]Option{WithClock(func() time.Time { return s.now })}, opts...)
	return New("sheets", opts...)
}

func (s *BreakerSuite) fail(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		b.RecordFailure()
	}
}

func (s *BreakerSuite) succeed(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		b.RecordSuccess()
	}
}

func (s *BreakerSuite) TestStartsClosed() {
	b := s.breaker()
	s.Equal("sheets", b.Name())
	s.Equal(StateClosed, b.State())
	s.True(b.Allow())
}

func (s *BreakerSuite) TestOpensOnConsecutiveFailures() {
	b := s.breaker(WithFailureThreshold(3))

	s.fail(b, 2)
	s.False(b.IsOpen())

	fallback, change := b.RecordFailure()
	s.True(fallback)
	s.True(change.Opened)
	s.True(b.IsOpen())

	fallback, change = b.RecordFailure()
	s.True(fallback)
	s.False(change.Opened, "already open")
}

func (s *BreakerSuite) TestSuccessClearsFailureStreak() {
	b := s.breaker(WithFailureThreshold(3))

	s.fail(b, 2)
	s.succeed(b, 1)
	s.fail(b, 2)
	s.False(b.IsOpen())

	s.fail(b, 1)
	s.True(b.IsOpen())
}

func (s *BreakerSuite) TestClosesAfterSuccessStreak() {
	b := s.breaker(WithFailureThreshold(1), WithSuccessThreshold(3))
	s.fail(b, 1)

	s.succeed(b, 2)
	b.RecordFailure()
	s.succeed(b, 2)
	s.True(b.IsOpen(), "a failure while open restarts the success streak")

	primary, change := b.RecordSuccess()
	s.True(primary)
	s.True(change.Closed)
	s.Equal(StateClosed, b.State())
}

func (s *BreakerSuite) TestCooldownGatesProbes() {
	b := s.breaker(WithFailureThreshold(1), WithCooldown(time.Minute))
	s.fail(b, 1)
	s.False(b.Allow())

	s.now = s.now.Add(time.Minute)
	s.True(b.Allow())

	b.RecordFailure()
	s.False(b.Allow(), "a failed probe restarts the cooldown")
}

func (s *BreakerSuite) TestReset() {
	b := s.breaker(WithFailureThreshold(1))
	s.fail(b, 1)

	b.Reset()
	s.False(b.IsOpen())
	s.True(b.Allow())
}
