// Package jobs runs the portal's background jobs.
package jobs

import (
	"context"
	"time"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	inmemdb "github.com/tusthegr8/campus-companion/storage/inmem"
)

// SweepSessions raises the timeout prompt in every idle logged in session and evicts the sessions
// nobody used for `evictAfter`. It returns the number of sessions waiting on a timeout prompt and the number
// of evicted ones.
func SweepSessions(sessions *inmemdb.SessionRegistry, now time.Time, evictAfter time.Duration) (timedOut, evicted int) {
	sessions.Range(func(_ string, app *portal.App) bool {
		if app.CheckTimeout(now) {
			timedOut++
		}
		return true
	})
	if evictAfter > 0 {
		evicted = sessions.Evict(now, evictAfter)
	}
	return timedOut, evicted
}

// StartSessionMonitor sweeps the sessions every `session.checkInterval` until ctx is done.
// The returned channel is closed once the monitor has stopped.
func StartSessionMonitor(
	ctx context.Context,
	conf *core.Config,
	sessions *inmemdb.SessionRegistry,
	logger core.Logger,
) <-chan struct{} {
	done := make(chan struct{})
	interval := conf.Session.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("session monitor stopped")
				return
			case now := <-ticker.C:
				timedOut, evicted := SweepSessions(sessions, now, conf.Session.EvictAfter)
				if timedOut > 0 || evicted > 0 {
					logger.Debug("session monitor", map[string]interface{}{
						"timedOut": timedOut,
						"evicted":  evicted,
						"active":   sessions.Len(),
					})
				}
			}
		}
	}()
	return done
}
