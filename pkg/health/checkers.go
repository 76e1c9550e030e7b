package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// RuntimeCheck fails when the process runs more than maxGoroutines goroutines
// or any recent GC pause exceeded maxPause. A zero limit disables that part.
func RuntimeCheck(maxGoroutines int, maxPause time.Duration) CheckFunc {
	return func(_ context.Context) error {
		if maxGoroutines > 0 {
			if n := runtime.NumGoroutine(); n > maxGoroutines {
				return errors.Errorf("goroutine count %d exceeds %d", n, maxGoroutines)
			}
		}
		if maxPause > 0 {
			var stats debug.GCStats
			debug.ReadGCStats(&stats)
			for _, pause := range stats.Pause {
				if pause > maxPause {
					return errors.Errorf("GC pause %s exceeds %s", pause, maxPause)
				}
			}
		}
		return nil
	}
}
