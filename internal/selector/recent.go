package selector

// RecentTracker is a bounded FIFO of recently served scenario ids.
// It is not safe for concurrent use; Selector guards it.
type RecentTracker struct {
	limit int
	ids   []string
}

// NewRecentTracker keeps at most limit ids.
func NewRecentTracker(limit int) *RecentTracker {
	if limit < 0 {
		limit = 0
	}
	return &RecentTracker{limit: limit, ids: make([]string, 0, limit)}
}

// Contains reports whether id was served recently.
func (t *RecentTracker) Contains(id string) bool {
	for _, v := range t.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Touch moves each id to the most recent position, evicting the oldest beyond the limit.
func (t *RecentTracker) Touch(ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		t.remove(id)
		t.ids = append(t.ids, id)
	}
	if over := len(t.ids) - t.limit; over > 0 {
		t.ids = append(t.ids[:0], t.ids[over:]...)
	}
}

// IDs returns the tracked ids, oldest first.
func (t *RecentTracker) IDs() []string {
	return append([]string(nil), t.ids...)
}

// Len is the number of tracked ids.
func (t *RecentTracker) Len() int {
	return len(t.ids)
}

func (t *RecentTracker) remove(id string) {
	for i, v := range t.ids {
		if v == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			return
		}
	}
}
