package stabilizer

import (
	"time"

	"github.com/zoobzio/clockz"
)

// Clock is the time source consumed by a debouncer. Readings are expected
// to be monotonic and non-decreasing; clockz.RealClock and clockz.FakeClock
// both satisfy it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to a Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// Option configures a debouncer.
type Option func(*config)

type config struct {
	clock Clock
}

// WithClock sets the time source. Use with clockz.FakeClock for
// deterministic tests. A nil clock leaves the real clock in place.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func newConfig(opts []Option) config {
	c := config{clock: clockz.RealClock}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
