package watch

import "time"

// DefaultDebounce is the quiet window applied when a target does not set
// its own. Rapid multi-file saves within the window collapse into one
// trigger.
const DefaultDebounce = 300 * time.Millisecond

// Trigger is a coalesced batch of change events: the rerun signal handed
// to the controller.
type Trigger struct {
	// Last is the most recent event in the batch.
	Last Event
	// Count is how many raw events the batch absorbed.
	Count int
}

// Debounce coalesces bursts of events into single triggers. A trigger
// fires once the input has been quiet for the whole window; every event
// inside the window resets it. The returned channel closes when the input
// closes.
func Debounce(in <-chan Event, window time.Duration) <-chan Trigger {
	if window <= 0 {
		window = DefaultDebounce
	}

	out := make(chan Trigger, 1)
	go func() {
		defer close(out)

		var (
			timer   *time.Timer
			timerC  <-chan time.Time
			pending Trigger
		)

		for {
			select {
			case ev, ok := <-in:
				if !ok {
					if timer != nil {
						timer.Stop()
					}
					return
				}
				pending.Last = ev
				pending.Count++
				if timer == nil {
					timer = time.NewTimer(window)
					timerC = timer.C
				} else {
					if !timer.Stop() {
						<-timerC
					}
					timer.Reset(window)
				}

			case <-timerC:
				out <- pending
				pending = Trigger{}
				timer = nil
				timerC = nil
			}
		}
	}()
	return out
}
