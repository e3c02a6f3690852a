package utils

import "time"

// Clock abstracts time.Now so rate windows and TTLs can be driven by tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
