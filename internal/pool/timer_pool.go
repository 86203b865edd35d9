// Package pool provides a pool of reusable timers for per-request deadlines.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer armed for duration d. Return it with PutTimer.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		if t.Reset(d) {
			// Timer was still active, drain the channel to avoid a stale tick.
			select {
			case <-t.C:
			default:
			}
		}

		return t
	}

	return time.NewTimer(d)
}

// PutTimer stops the timer and returns it to the pool.
// The timer must not be accessed afterwards.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		// Drain t.C if the tick was not consumed by the caller.
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
