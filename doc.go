// Package stabilizer provides a time-based debouncer for noisy, polled signals.
//
// Unlike counter based debouncers tied to a fixed sample period, a
// TimedDebouncer compares wall-clock time, so callers may poll at any
// cadence without re-tuning the debounce duration. A raw value is promoted
// to the stable value once it has been held for at least the debounce
// duration.
//
// Two starting policies are supported. New builds a debouncer that knows its
// starting value; NewUnknown builds one that reports no stable value until
// the first promotion:
//
//	d := stabilizer.New(false, 10*time.Millisecond)
//	for {
//		switch s := d.Update(readPin()).(type) {
//		case stabilizer.Stable[bool, stabilizer.Known[bool]]:
//			log.Printf("stable: %v", s.Value)
//		case stabilizer.Unstable[bool, stabilizer.Known[bool]]:
//			log.Printf("unstable: stable=%v current=%v", s.Stable, s.MostRecent)
//		case stabilizer.Transitioned[bool, stabilizer.Known[bool]]:
//			log.Printf("transitioned to %v from %v", s.Stable, s.PreviousStable)
//		}
//		time.Sleep(2 * time.Millisecond)
//	}
//
// A debouncer is not safe for concurrent use. Callers sharing one between
// goroutines must synchronize access themselves.
package stabilizer
