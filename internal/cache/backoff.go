package cache

import "time"

// Backoff is a truncated exponential retry delay. The zero value disables
// backoff.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// Delay returns the wait after the given number of consecutive failures.
func (b Backoff) Delay(failures int) time.Duration {
	if b.Min <= 0 || failures <= 0 {
		return 0
	}
	d := b.Min
	for i := 1; i < failures; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}
