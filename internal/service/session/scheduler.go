package session

import (
	"time"
	"unicode/utf8"
)

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations must call f on another
// goroutine, never from inside AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func RealScheduler() Scheduler {
	return realScheduler{}
}

// Delay maps a reply to its simulated typing time.
type Delay struct {
	PerChar time.Duration
	Min     time.Duration
	Max     time.Duration
}

func DefaultDelay() Delay {
	return Delay{
		PerChar: 20 * time.Millisecond,
		Min:     time.Second,
		Max:     3 * time.Second,
	}
}

func (d Delay) For(text string) time.Duration {
	delay := time.Duration(utf8.RuneCountInString(text)) * d.PerChar
	if delay < d.Min {
		delay = d.Min
	}
	if d.Max > 0 && delay > d.Max {
		delay = d.Max
	}
	return delay
}
