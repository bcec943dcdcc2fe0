// Package gpio provides GPIO input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reader reads the logical levels of a set of input lines.
type Reader interface {
	// Read returns the level of every line in channel order (true = ON).
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Line is a single input line. Every Line is also a stabilizer.Pin.
type Line interface {
	// Value returns the logical level, 0 or 1.
	Value() (int, error)
	Close() error
}

// Lines reads a set of lines in order.
type Lines []Line

// Read returns the level of every line. The first failing line aborts the read.
func (ls Lines) Read() ([]bool, error) {
	levels := make([]bool, len(ls))
	for i, l := range ls {
		v, err := l.Value()
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", i, err)
		}
		levels[i] = v != 0
	}
	return levels, nil
}

// Close closes every line, returning all close errors joined.
func (ls Lines) Close() error {
	var errs []error
	for i, l := range ls {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Defaults (BCM numbering on gpiochip0)
const (
	DefaultChip     = "gpiochip0"
	DefaultChannels = "ch=26,hw=16"
)

// Channel names an input line offset on the chip.
type Channel struct {
	Name   string
	Offset int
}

// ParseChannels parses a channel list of the form "name=offset,name=offset".
func ParseChannels(s string) ([]Channel, error) {
	var channels []Channel
	seen := make(map[string]bool)
	offsets := make(map[int]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, offset, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("channel %q: want name=offset", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(offset))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("channel %q: invalid offset %q", name, offset)
		}
		if seen[name] {
			return nil, fmt.Errorf("channel %q: duplicate name", name)
		}
		if other, ok := offsets[n]; ok {
			return nil, fmt.Errorf("channel %q: offset %d already used by %q", name, n, other)
		}
		seen[name] = true
		offsets[n] = name
		channels = append(channels, Channel{Name: name, Offset: n})
	}
	if len(channels) == 0 {
		return nil, errors.New("no channels configured")
	}
	return channels, nil
}

// Names returns the channel names in order.
func Names(channels []Channel) []string {
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = c.Name
	}
	return names
}
