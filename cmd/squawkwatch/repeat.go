package main

// repeatFilter reports whether an alert is the first for its key within a
// sliding window. Entries idle for longer than the window are evicted.
type repeatFilter struct {
	windowMillis int64
	lastSeen     map[string]int64
}

func newRepeatFilter(windowMillis int64) *repeatFilter {
	return &repeatFilter{windowMillis: windowMillis, lastSeen: make(map[string]int64)}
}

// first records key at atMillis and reports whether it had not been seen
// within the window. Not safe for concurrent use.
func (r *repeatFilter) first(key string, atMillis int64) bool {
	for k, prev := range r.lastSeen {
		if atMillis-prev >= r.windowMillis {
			delete(r.lastSeen, k)
		}
	}
	_, seen := r.lastSeen[key]
	r.lastSeen[key] = atMillis
	return !seen
}

func (r *repeatFilter) len() int { return len(r.lastSeen) }
