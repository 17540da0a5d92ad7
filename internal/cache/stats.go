package cache

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Stats is a point-in-time view of one key's refresh history.
type Stats struct {
	Key         string
	HasValue    bool
	FetchedAt   time.Time
	Fetches     int
	Failures    int
	Consecutive int
	LastError   string
	LastErrorAt time.Time
	LastLatency time.Duration
	Latencies   []time.Duration
	InFlight    bool
	RetryAt     time.Time
}

// Stats returns a snapshot for every key the cache has seen, ordered by key.
func (c *Cache[K, V]) Stats() []Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[K]struct{}, len(c.states)+len(c.entries))
	for k := range c.states {
		seen[k] = struct{}{}
	}
	for k := range c.entries {
		seen[k] = struct{}{}
	}

	out := make([]Stats, 0, len(seen))
	for k := range seen {
		out = append(out, c.statsLocked(k))
	}
	slices.SortFunc(out, func(a, b Stats) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// KeyStats returns the snapshot for one key.
func (c *Cache[K, V]) KeyStats(key K) (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, hasEntry := c.entries[key]
	_, hasState := c.states[key]
	if !hasEntry && !hasState {
		return Stats{Key: fmt.Sprint(key)}, false
	}
	return c.statsLocked(key), true
}

func (c *Cache[K, V]) statsLocked(key K) Stats {
	s := Stats{Key: fmt.Sprint(key)}
	if e, ok := c.entries[key]; ok {
		s.HasValue = true
		s.FetchedAt = e.FetchedAt
	}
	if st, ok := c.states[key]; ok {
		s.Fetches = st.fetches
		s.Failures = st.failures
		s.Consecutive = st.consecutive
		if st.lastErr != nil {
			s.LastError = st.lastErr.Error()
		}
		s.LastErrorAt = st.lastErrAt
		s.LastLatency = st.lastLatency
		s.Latencies = append([]time.Duration(nil), st.latencies...)
		s.InFlight = st.inFlight
		s.RetryAt = st.retryAt
	}
	return s
}
