//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using the Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines Lines
}

// NewRealReader requests every channel's line on chip as an input with
// pull-down, matching Pi boot defaults. With activeLow the line levels are
// inverted, so a raw active (1) input reads as OFF.
func NewRealReader(chipName string, channels []Channel, activeLow bool) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithPullDown}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	r := &RealReader{chip: chip}
	for _, c := range channels {
		l, err := chip.RequestLine(c.Offset, opts...)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", c.Name, c.Offset, err)
		}
		r.lines = append(r.lines, realLine{l})
	}
	return r, nil
}

// Read returns the logical level of every line.
func (r *RealReader) Read() ([]bool, error) {
	return r.lines.Read()
}

// Lines returns the requested lines in channel order.
func (r *RealReader) Lines() Lines {
	return r.lines
}

// Close releases all lines and the chip.
func (r *RealReader) Close() error {
	var errs []error
	if err := r.lines.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}

type realLine struct {
	*gpiocdev.Line
}

// Close reconfigures the line to input with pull-down (matching Pi boot
// defaults) before releasing it, so external hardware such as optocouplers
// cannot hold the pin in an unexpected state during early boot.
func (l realLine) Close() error {
	var errs []error
	if err := l.Line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure: %w", err))
	}
	if err := l.Line.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
