package gpio

import "errors"

// FakeReader is a test double that returns scripted line levels.
type FakeReader struct {
	// Samples contains scripted levels, one slice per Read, in channel order.
	Samples [][]bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples [][]bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() ([]bool, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}

	if len(f.Samples) == 0 {
		return nil, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return append([]bool(nil), sample...), nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeLine is a single scripted line.
type FakeLine struct {
	// Levels contains scripted values (0 or 1). Each call to Value consumes
	// the next one; the last repeats.
	Levels []int

	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Value()
	ReadError error
}

// Value returns the next scripted level.
func (l *FakeLine) Value() (int, error) {
	if l.ReadError != nil {
		return 0, l.ReadError
	}
	if len(l.Levels) == 0 {
		return 0, errors.New("no levels configured")
	}

	v := l.Levels[l.index]
	if l.index < len(l.Levels)-1 {
		l.index++
	}
	return v, nil
}

// Close marks the line as closed.
func (l *FakeLine) Close() error {
	l.Closed = true
	return nil
}
