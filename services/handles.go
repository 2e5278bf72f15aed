package services

import (
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
)

// maxTombstones bounds how many released handles are remembered for ErrHandleReleased.
// Older ones fall back to ErrHandleNotFound.
const maxTombstones = 1024

// HandleRegistry mints and revokes the session-scoped content handles of local lessons.
// A handle is released exactly once; a lesson owns at most one live handle.
type HandleRegistry struct {
	mu       sync.Mutex
	live     map[string]*model.Content
	byLesson map[string]string
	released map[string]struct{}
	order    []string
	limit    int
	acquired int64
	revoked  int64
}

func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{
		live:     make(map[string]*model.Content),
		byLesson: make(map[string]string),
		released: make(map[string]struct{}),
		limit:    maxTombstones,
	}
}

// Acquire releases the lesson's current handle, if any, and mints a new one over data.
// Nothing but the bytes is stored, so the MIME type is sniffed here.
func (r *HandleRegistry) Acquire(lessonID string, data []byte) string {
	mimeType := mimetype.Detect(data).String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.byLesson[lessonID]; ok {
		r.releaseLocked(previous)
	}

	handle := shared.HandlePrefix + uuid.NewString()
	r.live[handle] = &model.Content{LessonID: lessonID, MimeType: mimeType, Data: data}
	r.byLesson[lessonID] = handle
	r.acquired++
	contentHandlesAcquiredTotal.Inc()
	contentHandlesLive.Inc()
	return handle
}

// Release revokes a handle. A second release of the same handle fails with ErrHandleReleased
// and leaves the counters untouched.
func (r *HandleRegistry) Release(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.released[handle]; ok {
		return ErrHandleReleased
	}
	if _, ok := r.live[handle]; !ok {
		return ErrHandleNotFound
	}
	r.releaseLocked(handle)
	return nil
}

// ReleaseLesson revokes the live handle of a lesson. Lessons without one are ignored.
func (r *HandleRegistry) ReleaseLesson(lessonID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.byLesson[lessonID]; ok {
		r.releaseLocked(handle)
	}
}

func (r *HandleRegistry) releaseLocked(handle string) {
	content, ok := r.live[handle]
	if !ok {
		return
	}
	delete(r.live, handle)
	if r.byLesson[content.LessonID] == handle {
		delete(r.byLesson, content.LessonID)
	}
	r.remember(handle)
	r.revoked++
	contentHandlesReleasedTotal.Inc()
	contentHandlesLive.Dec()
}

func (r *HandleRegistry) remember(handle string) {
	r.released[handle] = struct{}{}
	r.order = append(r.order, handle)
	if len(r.order) > r.limit {
		delete(r.released, r.order[0])
		r.order[0] = ""
		r.order = r.order[1:]
	}
}

// ReleaseAll revokes every live handle, for session teardown.
func (r *HandleRegistry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for handle := range r.live {
		r.releaseLocked(handle)
	}
}

// Open returns the content behind a live handle.
func (r *HandleRegistry) Open(handle string) (*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, ok := r.live[handle]
	if !ok {
		if _, gone := r.released[handle]; gone {
			return nil, ErrHandleReleased
		}
		return nil, ErrHandleNotFound
	}
	return content, nil
}

// HandleFor reports the live handle of a lesson.
func (r *HandleRegistry) HandleFor(lessonID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.byLesson[lessonID]
	return handle, ok
}

// IsLive reports whether handle can still be opened.
func (r *HandleRegistry) IsLive(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.live[handle]
	return ok
}

// Stats counts handle lifecycle events. Live is always Acquired - Released.
func (r *HandleRegistry) Stats() dto.HandleStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return dto.HandleStats{
		Acquired: r.acquired,
		Released: r.revoked,
		Live:     int64(len(r.live)),
	}
}
