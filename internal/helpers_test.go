package internal

import (
	"strconv"
	"time"
)

// staticClock returns a clock stuck at t
func staticClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// sequentialIDs returns an id generator yielding prefix1, prefix2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
