package session

import "time"

// Ticker delivers countdown ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func newRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// startTimerLocked runs the countdown for the current session. Only one timer
// is live at a time; starting a new one invalidates the old.
func (c *Controller) startTimerLocked() {
	c.cancelTimerLocked()

	epoch := c.epoch
	stop := make(chan struct{})
	c.stopTimer = stop
	ticker := c.newTicker(time.Second)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				if !c.tick(epoch) {
					return
				}
			}
		}
	}()
}

// cancelTimerLocked stops the running timer. Ticks already in flight carry the
// old epoch and are dropped by tick.
func (c *Controller) cancelTimerLocked() {
	c.epoch++
	if c.stopTimer != nil {
		close(c.stopTimer)
		c.stopTimer = nil
	}
}

// tick decrements the countdown once. It reports whether the timer should keep
// running.
func (c *Controller) tick(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch || c.state != StateActive || c.remaining <= 0 {
		return false
	}

	c.remaining--
	c.publishLocked(EventTick)
	if c.remaining > 0 {
		return true
	}

	if c.settings.AutoSubmit {
		c.log.Info("time is up for quiz %s, submitting", c.sessionID)
		c.completeLocked("timer")
	} else {
		c.log.Info("time is up for quiz %s, waiting for manual submit", c.sessionID)
		c.cancelTimerLocked()
		c.publishLocked(EventState)
	}
	return false
}
