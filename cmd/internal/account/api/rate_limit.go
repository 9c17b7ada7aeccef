package accountapi

import (
	"slices"
	"sync"
	"time"
)

// maxTrackedKeys bounds failureLog memory under credential-stuffing traffic.
const maxTrackedKeys = 100_000

type lockoutTier struct {
	Threshold int
	Duration  time.Duration
}

// failureLog keeps recent failed credential checks per key (IP or normalized handle).
type failureLog struct {
	mu      sync.Mutex
	events  map[string][]time.Time // newest first
	horizon time.Duration
	maxKeys int

	// locked reports whether a key is currently blocked; such keys are never evicted.
	locked func(now time.Time, failures []time.Time) bool
}

func newFailureLog(horizon time.Duration, locked func(time.Time, []time.Time) bool) *failureLog {
	if horizon <= 0 {
		horizon = time.Hour
	}
	if locked == nil {
		locked = func(time.Time, []time.Time) bool { return false }
	}
	return &failureLog{
		events:  make(map[string][]time.Time),
		horizon: horizon,
		maxKeys: maxTrackedKeys,
		locked:  locked,
	}
}

// record adds a failure at now.
func (l *failureLog) record(key string, now time.Time) {
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.events[key]; !ok && len(l.events) >= l.maxKeys {
		l.sweepLocked(now)
		if len(l.events) >= l.maxKeys {
			// Every tracked key is locked out; keep them and drop the newcomer.
			return
		}
	}
	cur := l.pruneLocked(key, now)
	l.events[key] = append([]time.Time{now}, cur...)
}

// recent returns a copy of the failures for key inside the horizon, newest first.
func (l *failureLog) recent(key string, now time.Time) []time.Time {
	if key == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.pruneLocked(key, now)
	if len(cur) == 0 {
		return nil
	}
	out := make([]time.Time, len(cur))
	copy(out, cur)
	return out
}

func (l *failureLog) reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.events, key)
}

func (l *failureLog) pruneLocked(key string, now time.Time) []time.Time {
	cut := now.Add(-l.horizon)
	cur := l.events[key]
	n := len(cur)
	for n > 0 && !cur[n-1].After(cut) {
		n--
	}
	if n == 0 {
		delete(l.events, key)
		return nil
	}
	cur = cur[:n]
	l.events[key] = cur
	return cur
}

// sweepLocked prunes expired failures and, if the log is still full, evicts the
// unlocked keys whose latest failure is oldest until a tenth of the capacity is free.
func (l *failureLog) sweepLocked(now time.Time) {
	for k := range l.events {
		l.pruneLocked(k, now)
	}
	if len(l.events) < l.maxKeys {
		return
	}

	type candidate struct {
		key    string
		latest time.Time
	}
	candidates := make([]candidate, 0, len(l.events))
	for k, evs := range l.events {
		if l.locked(now, evs) {
			continue
		}
		candidates = append(candidates, candidate{key: k, latest: evs[0]})
	}
	slices.SortFunc(candidates, func(a, b candidate) int { return a.latest.Compare(b.latest) })

	target := l.maxKeys - max(l.maxKeys/10, 1)
	for _, c := range candidates {
		if len(l.events) <= target {
			break
		}
		delete(l.events, c.key)
	}
}

// evaluateWindowThrottle blocks when at least max failures fall inside window.
// The retry delay is how long until the oldest counted failure leaves the window.
func evaluateWindowThrottle(now time.Time, failures []time.Time, max int, window time.Duration) (bool, time.Duration) {
	if max <= 0 || window <= 0 {
		return false, 0
	}
	cut := now.Add(-window)

	var (
		count  int
		oldest time.Time
	)
	for _, f := range failures {
		if !f.After(cut) {
			continue
		}
		count++
		if oldest.IsZero() || f.Before(oldest) {
			oldest = f
		}
	}
	if count < max {
		return false, 0
	}
	return true, oldest.Add(window).Sub(now)
}

// evaluateProgressiveLockout checks tiers in order (most severe first). A tier trips when
// at least Threshold failures fall inside its Duration; the lock lasts Duration from the
// latest failure.
func evaluateProgressiveLockout(now time.Time, failures []time.Time, tiers []lockoutTier) (bool, time.Duration) {
	for _, tier := range tiers {
		if tier.Threshold <= 0 || tier.Duration <= 0 {
			continue
		}
		cut := now.Add(-tier.Duration)

		var (
			count  int
			latest time.Time
		)
		for _, f := range failures {
			if !f.After(cut) {
				continue
			}
			count++
			if f.After(latest) {
				latest = f
			}
		}
		if count >= tier.Threshold {
			return true, latest.Add(tier.Duration).Sub(now)
		}
	}
	return false, 0
}
