package stabilizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

type (
	kb = Known[bool]
	ub = Unknown[bool]
	ki = Known[int]
)

func TestNewKnown(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(true, 10*time.Millisecond, WithClock(clock))

	assert.Equal(t, KnownOf(true), d.ReadStable())
	assert.Equal(t, 10*time.Millisecond, d.DebounceTime())
	assert.Equal(t, clock.Now(), d.lastChangeTime)
}

func TestNewUnknown(t *testing.T) {
	d := NewUnknown[int](10*time.Millisecond, WithClock(clockz.NewFakeClock()))

	_, ok := d.ReadStable().Value()
	assert.False(t, ok)
	_, ok = d.lastValue.Value()
	assert.False(t, ok)
}

func TestNilClockFallsBackToRealClock(t *testing.T) {
	d := New(1, time.Second, WithClock(nil))
	require.NotNil(t, d.clock)
}

func TestUpdateRepeatedStableValue(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(5, 10*time.Millisecond, WithClock(clock))
	start := d.lastChangeTime

	for i := 0; i < 20; i++ {
		assert.Equal(t, Stable[int, ki]{Value: 5}, d.Update(5))
		clock.Advance(3 * time.Millisecond)
	}
	assert.Equal(t, start, d.lastChangeTime, "stable updates must not restart the change clock")
}

func TestReturnToStableBypassesTimer(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 10*time.Millisecond, WithClock(clock))

	assert.Equal(t, Unstable[int, ki]{Stable: KnownOf(0), MostRecent: KnownOf(1)}, d.Update(1))

	clock.Advance(time.Millisecond)
	assert.Equal(t, Stable[int, ki]{Value: 0}, d.Update(0))
}

func TestPromotionThreshold(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 10*time.Millisecond, WithClock(clock))

	assert.Equal(t, KindUnstable, d.Update(1).Kind())

	for i := 0; i < 9; i++ {
		clock.Advance(time.Millisecond)
		assert.Equal(t, Unstable[int, ki]{Stable: KnownOf(0), MostRecent: KnownOf(1)}, d.Update(1), "at %dms", i+1)
	}

	clock.Advance(time.Millisecond)
	assert.Equal(t, Transitioned[int, ki]{Stable: 1, PreviousStable: KnownOf(0)}, d.Update(1))

	for i := 0; i < 5; i++ {
		clock.Advance(time.Millisecond)
		assert.Equal(t, Stable[int, ki]{Value: 1}, d.Update(1))
	}
}

func TestCoarsePollingPromotesOnNextUpdate(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(false, 10*time.Millisecond, WithClock(clock))

	assert.Equal(t, KindUnstable, d.Update(true).Kind())

	clock.Advance(time.Second)
	assert.Equal(t, Transitioned[bool, kb]{Stable: true, PreviousStable: KnownOf(false)}, d.Update(true))
}

func TestFlickerRestartsChangeTimer(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 10*time.Millisecond, WithClock(clock))

	d.Update(1)

	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, Unstable[int, ki]{Stable: KnownOf(0), MostRecent: KnownOf(2)}, d.Update(2))

	clock.Advance(9 * time.Millisecond) // 14ms
	assert.Equal(t, KindUnstable, d.Update(2).Kind())

	clock.Advance(time.Millisecond) // 15ms
	assert.Equal(t, Transitioned[int, ki]{Stable: 2, PreviousStable: KnownOf(0)}, d.Update(2))
}

func TestUnknownStart(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := NewUnknown[bool](10*time.Millisecond, WithClock(clock))

	assert.Equal(t, Unstable[bool, ub]{}, d.Read())

	assert.Equal(t, Unstable[bool, ub]{MostRecent: UnknownOf(true)}, d.Update(true))

	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, Unstable[bool, ub]{MostRecent: UnknownOf(true)}, d.Update(true))

	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, Transitioned[bool, ub]{Stable: true}, d.Read())
	assert.Equal(t, Stable[bool, ub]{Value: true}, d.Update(true))
	assert.Equal(t, UnknownOf(true), d.ReadStable())
}

func TestUnknownReadBeforeUpdateDoesNotMutate(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := NewUnknown[int](10*time.Millisecond, WithClock(clock))
	start := d.lastChangeTime

	clock.Advance(time.Hour)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Unstable[int, Unknown[int]]{}, d.Read())
	}
	assert.Equal(t, start, d.lastChangeTime)
	assert.False(t, d.lastValue.IsKnown())
}

func TestUnknownFirstUpdateRestartsClock(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := NewUnknown[int](10*time.Millisecond, WithClock(clock))

	// time spent before the first sample does not count towards promotion
	clock.Advance(time.Hour)
	assert.Equal(t, KindUnstable, d.Update(1).Kind())
}

func TestUnknownFlickerBeforeBaseline(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := NewUnknown[int](10*time.Millisecond, WithClock(clock))

	d.Update(1)
	clock.Advance(8 * time.Millisecond)
	d.Update(2)
	clock.Advance(8 * time.Millisecond)
	assert.Equal(t, Unstable[int, Unknown[int]]{MostRecent: UnknownOf(2)}, d.Update(2))

	clock.Advance(2 * time.Millisecond)
	assert.Equal(t, Transitioned[int, Unknown[int]]{Stable: 2}, d.Update(2))

	clock.Advance(time.Millisecond)
	assert.Equal(t, Unstable[int, Unknown[int]]{Stable: UnknownOf(2), MostRecent: UnknownOf(1)}, d.Update(1))
}

func TestReadStableNeverMutates(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 10*time.Millisecond, WithClock(clock))

	d.Update(1)
	clock.Advance(10 * time.Millisecond)
	for i := 0; i < 5; i++ {
		assert.Equal(t, KnownOf(0), d.ReadStable())
	}

	assert.Equal(t, Transitioned[int, ki]{Stable: 1, PreviousStable: KnownOf(0)}, d.Update(1))
	assert.Equal(t, KnownOf(1), d.ReadStable())
}

func TestReadReevaluatesLastValue(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 10*time.Millisecond, WithClock(clock))

	assert.Equal(t, Stable[int, ki]{Value: 0}, d.Read())

	d.Update(1)
	clock.Advance(4 * time.Millisecond)
	assert.Equal(t, Unstable[int, ki]{Stable: KnownOf(0), MostRecent: KnownOf(1)}, d.Read())

	clock.Advance(6 * time.Millisecond)
	assert.Equal(t, Transitioned[int, ki]{Stable: 1, PreviousStable: KnownOf(0)}, d.Read())
	assert.Equal(t, Stable[int, ki]{Value: 1}, d.Read())
}

func TestReadValue(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 10*time.Millisecond, WithClock(clock))

	d.Update(1)
	assert.Equal(t, 0, d.ReadValue().Value())

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 1, d.ReadValue().Value())

	u := NewUnknown[int](10*time.Millisecond, WithClock(clock))
	_, ok := u.ReadValue().Value()
	assert.False(t, ok)

	u.Update(3)
	clock.Advance(10 * time.Millisecond)
	v, ok := u.ReadValue().Value()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestZeroDurationPromotesImmediately(t *testing.T) {
	clock := clockz.NewFakeClock()
	d := New(0, 0, WithClock(clock))

	assert.Equal(t, Transitioned[int, ki]{Stable: 1, PreviousStable: KnownOf(0)}, d.Update(1))
	assert.Equal(t, Transitioned[int, ki]{Stable: 2, PreviousStable: KnownOf(1)}, d.Update(2))
	assert.Equal(t, Stable[int, ki]{Value: 2}, d.Update(2))

	u := NewUnknown[int](0, WithClock(clock))
	assert.Equal(t, Transitioned[int, Unknown[int]]{Stable: 7}, u.Update(7))
}

func TestConcreteScenario(t *testing.T) {
	clock := clockz.NewFakeClock()
	start := clock.Now()
	d := New(false, 10*time.Millisecond, WithClock(clock))

	steps := []struct {
		at    time.Duration
		input bool
		want  State[bool, kb]
	}{
		{0, false, Stable[bool, kb]{Value: false}},
		{1 * time.Millisecond, true, Unstable[bool, kb]{Stable: KnownOf(false), MostRecent: KnownOf(true)}},
		{2 * time.Millisecond, false, Stable[bool, kb]{Value: false}},
		{3 * time.Millisecond, true, Unstable[bool, kb]{Stable: KnownOf(false), MostRecent: KnownOf(true)}},
		{14 * time.Millisecond, true, Transitioned[bool, kb]{Stable: true, PreviousStable: KnownOf(false)}},
		{15 * time.Millisecond, true, Stable[bool, kb]{Value: true}},
	}

	for _, step := range steps {
		clock.Advance(start.Add(step.at).Sub(clock.Now()))
		assert.Equal(t, step.want, d.Update(step.input), "update(%v) at %v", step.input, step.at)
	}
}

func TestClockFunc(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := at
	d := New(0, 250*time.Millisecond, WithClock(ClockFunc(func() time.Time { return now })))

	d.Update(1)
	now = at.Add(249 * time.Millisecond)
	assert.False(t, d.Update(1).IsTransition())

	now = at.Add(250 * time.Millisecond)
	assert.True(t, d.Update(1).IsTransition())
}
