package stabilizer

import "time"

// TimedDebouncer stabilizes a signal by promoting a raw value only after it
// has been held for the debounce duration. S selects the starting policy:
// Known for debouncers built with New, Unknown for NewUnknown.
type TimedDebouncer[T comparable, S Slot[T, S]] struct {
	lastStable     S
	lastValue      S
	lastChangeTime time.Time
	debounceTime   time.Duration
	clock          Clock
}

// New creates a debouncer with a known starting value and debounce duration.
// A zero duration promotes a new raw value on the first update that sees it.
func New[T comparable](start T, debounceTime time.Duration, opts ...Option) *TimedDebouncer[T, Known[T]] {
	c := newConfig(opts)
	return &TimedDebouncer[T, Known[T]]{
		lastStable:     KnownOf(start),
		lastValue:      KnownOf(start),
		lastChangeTime: c.clock.Now(),
		debounceTime:   debounceTime,
		clock:          c.clock,
	}
}

// NewUnknown creates a debouncer without a starting value. It reports no
// stable value until the first raw value has been held for the debounce
// duration.
func NewUnknown[T comparable](debounceTime time.Duration, opts ...Option) *TimedDebouncer[T, Unknown[T]] {
	c := newConfig(opts)
	return &TimedDebouncer[T, Unknown[T]]{
		lastChangeTime: c.clock.Now(),
		debounceTime:   debounceTime,
		clock:          c.clock,
	}
}

// Update feeds a new raw value and returns the resulting state. A
// Transitioned result means v was promoted to the stable value by this call.
func (d *TimedDebouncer[T, S]) Update(v T) State[T, S] {
	if stable, ok := d.lastStable.TryGet(); ok && stable == v {
		// stayed at or returned to the stable value; the change clock is
		// left alone
		d.lastValue = d.lastValue.Holding(v)
		return Stable[T, S]{Value: stable}
	}

	now := d.clock.Now()
	if last, ok := d.lastValue.TryGet(); !ok || last != v {
		d.lastChangeTime = now
	}
	d.lastValue = d.lastValue.Holding(v)

	if !now.Before(d.lastChangeTime.Add(d.debounceTime)) {
		previous := d.lastStable
		d.lastStable = d.lastStable.Holding(v)
		return Transitioned[T, S]{Stable: v, PreviousStable: previous}
	}

	return Unstable[T, S]{Stable: d.lastStable, MostRecent: d.lastValue}
}

// Read re-evaluates the last raw value against the clock without new input.
// Before any raw value has been seen it returns Unstable with both values
// unknown, without touching the clock.
func (d *TimedDebouncer[T, S]) Read() State[T, S] {
	last, ok := d.lastValue.TryGet()
	if !ok {
		return Unstable[T, S]{Stable: d.lastStable, MostRecent: d.lastValue}
	}
	return d.Update(last)
}

// ReadValue performs a Read and returns the stable value.
func (d *TimedDebouncer[T, S]) ReadValue() S {
	return d.Read().StableValue()
}

// ReadStable returns the last promoted value without re-evaluating the
// clock or mutating state.
func (d *TimedDebouncer[T, S]) ReadStable() S {
	return d.lastStable
}

// DebounceTime returns the configured debounce duration.
func (d *TimedDebouncer[T, S]) DebounceTime() time.Duration {
	return d.debounceTime
}
