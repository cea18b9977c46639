package sync

import "time"

// Clock abstracts timer creation so tests can drive the debounce windows
// deterministically instead of sleeping through them.
type Clock interface {
	Now() time.Time
	// AfterFunc arms a one-shot timer that runs fn after d.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable one-shot timer.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// actually stopped the timer (false if it already fired).
	Stop() bool
}

// realClock is the production Clock backed by the time package.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
