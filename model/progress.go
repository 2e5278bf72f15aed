package model

const (
	StatusNotStarted = "not-started"
	StatusStarted    = "started"
	StatusCompleted  = "completed"
)

// ProgressEntry tracks one learner interaction with one lesson of one course.
type ProgressEntry struct {
	Status      string  `json:"status"`
	Timestamp   float64 `json:"timestamp"`   // most recent playback position, seconds
	LastUpdated int64   `json:"lastUpdated"` // epoch milliseconds
}

// ProgressMap is keyed by course ID then lesson ID.
type ProgressMap map[string]map[string]ProgressEntry

// Entry returns the stored entry, if any.
func (p ProgressMap) Entry(courseID, lessonID string) (ProgressEntry, bool) {
	course, ok := p[courseID]
	if !ok {
		return ProgressEntry{}, false
	}
	entry, ok := course[lessonID]
	return entry, ok
}

// Entries flattens the map across all courses.
func (p ProgressMap) Entries() []ProgressEntry {
	var entries []ProgressEntry
	for _, course := range p {
		for _, entry := range course {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Clone returns a deep copy.
func (p ProgressMap) Clone() ProgressMap {
	out := make(ProgressMap, len(p))
	for courseID, lessons := range p {
		inner := make(map[string]ProgressEntry, len(lessons))
		for lessonID, entry := range lessons {
			inner[lessonID] = entry
		}
		out[courseID] = inner
	}
	return out
}
