//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, channels []Channel, activeLow bool) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() ([]bool, error) {
	return nil, errUnsupported
}

// Lines returns no lines on non-Linux platforms.
func (r *RealReader) Lines() Lines {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
