package sim

import "time"

// watchIdle stops a run whose observers have all detached and not returned
// within the grace period. The runner itself gates the first turn on an
// observer attaching; this covers losing them mid-run. It exits as soon as
// the run is terminal.
func watchIdle(state *RunState, grace time.Duration) {
	ticker := time.NewTicker(idlePollInterval(grace))
	defer ticker.Stop()

	for {
		select {
		case <-state.Done():
			return
		case <-ticker.C:
			if state.Terminal() {
				return
			}
			b := state.Bus()
			if b.Count() == 0 && time.Since(b.LastChange()) >= grace {
				state.Stop()
				return
			}
		}
	}
}

// idlePollInterval derives the check cadence from the grace period so short
// test graces are still detected promptly.
func idlePollInterval(grace time.Duration) time.Duration {
	poll := grace / 5
	if poll < 10*time.Millisecond {
		return 10 * time.Millisecond
	}
	if poll > time.Second {
		return time.Second
	}
	return poll
}
