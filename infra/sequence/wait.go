package sequence

import (
	"runtime"
	"time"
)

// WaitStrategy decides how a spinning producer or consumer backs off.
// Wait is called with the number of failed attempts so far and returns the
// next attempt count, so implementations can escalate.
type WaitStrategy interface {
	Wait(attempt int) int
}

// SpinYieldWait spins hot, then yields the processor, then parks for a short
// sleep. Tuned for latency over CPU efficiency.
type SpinYieldWait struct {
	SpinLimit  int
	YieldLimit int
	Park       time.Duration
}

func DefaultWaitStrategy() SpinYieldWait {
	return SpinYieldWait{
		SpinLimit:  64,
		YieldLimit: 1024,
		Park:       50 * time.Microsecond,
	}
}

func (w SpinYieldWait) Wait(attempt int) int {
	switch {
	case attempt < w.SpinLimit:
		// hot spin
	case attempt < w.YieldLimit:
		runtime.Gosched()
	default:
		time.Sleep(w.Park)
	}
	return attempt + 1
}

// BusyWait never parks. Used in tests to remove timing dependence.
type BusyWait struct{}

func (BusyWait) Wait(attempt int) int {
	runtime.Gosched()
	return attempt + 1
}
