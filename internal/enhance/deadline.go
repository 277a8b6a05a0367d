package enhance

import "time"

// Deadline is a cooperative-cancellation budget: a fixed instant after which
// remaining work should be skipped, not aborted mid-step. It is passed down
// the call stack instead of scattering wall-clock arithmetic through the
// strategies.
type Deadline struct {
	at time.Time
}

// After returns a Deadline expiring budget from now.
func After(budget time.Duration) Deadline {
	return Deadline{at: time.Now().Add(budget)}
}

// Remaining returns the time left before expiry, floored at zero.
func (d Deadline) Remaining() time.Duration {
	if r := time.Until(d.at); r > 0 {
		return r
	}
	return 0
}

// Expired reports whether the deadline has passed.
func (d Deadline) Expired() bool {
	return !time.Now().Before(d.at)
}

// Allot carves a per-line deadline out of d: the smaller of cap and an even
// share of the remaining budget across n items. Later lines get
// progressively less time when earlier lines run long, so one expensive
// line cannot starve the rest.
func (d Deadline) Allot(n int, cap time.Duration) Deadline {
	if n < 1 {
		n = 1
	}
	share := d.Remaining() / time.Duration(n)
	if share > cap {
		share = cap
	}
	return After(share)
}
