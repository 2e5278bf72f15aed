package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

const (
	completeFraction = 0.9
	startFraction    = 0.05
	startSeconds     = 5

	activityDays     = 7
	activityPerEntry = 20
	activityMax      = 100
)

// ProgressService is the progress ledger. Each event rewrites the whole progress record under
// one lock so concurrent events for different lessons never drop each other.
type ProgressService struct {
	appContext.DefaultService

	records RecordStore
	catalog *CatalogService

	mu       sync.Mutex
	progress model.ProgressMap
	now      func() time.Time
}

const PROGRESS_SVC = "progress_svc"

func NewProgressService(records RecordStore, catalog *CatalogService) *ProgressService {
	return &ProgressService{
		records:  records,
		catalog:  catalog,
		progress: model.ProgressMap{},
		now:      time.Now,
	}
}

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Start() error {
	if svc.records == nil {
		svc.records = svc.Service(STORAGE_SVC).(*StorageService).Records()
	}
	if svc.catalog == nil {
		svc.catalog = svc.Service(CATALOG_SVC).(*CatalogService)
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc.Load(context.Background())
}

func (svc *ProgressService) Shutdown() {}

// SetClock replaces the time source.
func (svc *ProgressService) SetClock(now func() time.Time) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.now = now
}

// Load reads the progress record. An unreadable record is logged and treated as empty but
// left in place.
func (svc *ProgressService) Load(ctx context.Context) error {
	value, ok, err := svc.records.Get(ctx, shared.RecordProgress)
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	progress := model.ProgressMap{}
	if ok {
		if err := shared.UnmarshalString(value, &progress); err != nil {
			log.WithFields(log.Fields{
				"record": shared.RecordProgress,
				"error":  err.Error(),
			}).Error("Failed to parse progress")
			progress = model.ProgressMap{}
		}
		if progress == nil {
			progress = model.ProgressMap{}
		}
	}

	svc.mu.Lock()
	svc.progress = progress
	svc.mu.Unlock()
	return nil
}

func (svc *ProgressService) Reload(ctx context.Context) error {
	return svc.Load(ctx)
}

// Clear forgets all progress in memory. Stored records are the caller's concern.
func (svc *ProgressService) Clear() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.progress = model.ProgressMap{}
}

func (svc *ProgressService) persist(ctx context.Context, progress model.ProgressMap) error {
	value, err := shared.MarshalString(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := svc.records.Set(ctx, shared.RecordProgress, value); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// nextStatus applies the completion thresholds. Completed is terminal unless forced again
// and started never falls back to not-started.
func nextStatus(current string, seconds, duration float64, forceComplete bool) string {
	fraction := 0.0
	if duration > 0 {
		fraction = seconds / duration
	}

	switch {
	case forceComplete || fraction > completeFraction:
		return model.StatusCompleted
	case (fraction > startFraction || seconds > startSeconds) && current != model.StatusCompleted:
		return model.StatusStarted
	default:
		return current
	}
}

// RecordProgress folds one playback or read event into the ledger. The position and timestamp
// are always overwritten. Nothing changes in memory if the write fails.
func (svc *ProgressService) RecordProgress(ctx context.Context, courseID, lessonID string, seconds, duration float64, forceComplete bool) (model.ProgressEntry, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	existing, ok := svc.progress.Entry(courseID, lessonID)
	if !ok {
		existing = model.ProgressEntry{Status: model.StatusNotStarted}
	}

	entry := model.ProgressEntry{
		Status:      nextStatus(existing.Status, seconds, duration, forceComplete),
		Timestamp:   seconds,
		LastUpdated: svc.now().UnixMilli(),
	}

	next := svc.progress.Clone()
	if next[courseID] == nil {
		next[courseID] = map[string]model.ProgressEntry{}
	}
	next[courseID][lessonID] = entry

	if err := svc.persist(ctx, next); err != nil {
		return model.ProgressEntry{}, err
	}

	svc.progress = next
	progressEventsTotal.WithLabelValues(entry.Status).Inc()
	return entry, nil
}

// MarkComplete records a finished read (pdf) or a video that played to the end.
func (svc *ProgressService) MarkComplete(ctx context.Context, courseID, lessonID string) (model.ProgressEntry, error) {
	lesson, _, err := svc.catalog.Lesson(courseID, lessonID)
	if err != nil {
		return model.ProgressEntry{}, err
	}

	if lesson.Type == model.LessonTypePDF {
		return svc.RecordProgress(ctx, courseID, lessonID, 1, 1, true)
	}
	return svc.RecordProgress(ctx, courseID, lessonID, lesson.Duration, lesson.Duration, true)
}

// ==================== READS ====================

func (svc *ProgressService) Snapshot() model.ProgressMap {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.progress.Clone()
}

func (svc *ProgressService) LessonProgress(courseID, lessonID string) (model.ProgressEntry, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.progress.Entry(courseID, lessonID)
}

func (svc *ProgressService) LessonStatus(courseID, lessonID string) string {
	if entry, ok := svc.LessonProgress(courseID, lessonID); ok {
		return entry.Status
	}
	return model.StatusNotStarted
}

// CourseProgress is the rounded completion percentage over the lessons the course has now.
// Unknown and empty courses report 0.
func (svc *ProgressService) CourseProgress(courseID string) int {
	course, err := svc.catalog.Course(courseID)
	if err != nil {
		return 0
	}
	return svc.courseProgress(course)
}

func (svc *ProgressService) courseProgress(course model.Course) int {
	completed, total := svc.countCompleted(course.ID, course.FlatLessons())
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func (svc *ProgressService) countCompleted(courseID string, lessons []model.Lesson) (int, int) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	completed := 0
	for _, lesson := range lessons {
		if entry, ok := svc.progress.Entry(courseID, lesson.ID); ok && entry.Status == model.StatusCompleted {
			completed++
		}
	}
	return completed, len(lessons)
}

func (svc *ProgressService) ModuleProgress(courseID, moduleID string) (dto.ModuleProgressResponse, error) {
	course, err := svc.catalog.Course(courseID)
	if err != nil {
		return dto.ModuleProgressResponse{}, err
	}
	mi := course.ModuleIndex(moduleID)
	if mi < 0 {
		return dto.ModuleProgressResponse{}, ErrModuleNotFound
	}

	completed, total := svc.countCompleted(courseID, course.Modules[mi].Lessons)
	return dto.ModuleProgressResponse{
		ModuleID:  moduleID,
		Completed: completed,
		Total:     total,
		Label:     strconv.Itoa(completed) + "/" + strconv.Itoa(total),
	}, nil
}

// DailyActivity returns the last seven local calendar days, oldest first, ending today.
func (svc *ProgressService) DailyActivity() []dto.DailyActivity {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	now := svc.now()
	entries := svc.progress.Entries()
	days := make([]dto.DailyActivity, 0, activityDays)

	for i := activityDays - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), now.Day()-i, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)

		count := 0
		for _, entry := range entries {
			if entry.LastUpdated >= start.UnixMilli() && entry.LastUpdated < end.UnixMilli() {
				count++
			}
		}

		value := count * activityPerEntry
		if value > activityMax {
			value = activityMax
		}
		days = append(days, dto.DailyActivity{Date: start, Value: value})
	}
	return days
}

// TotalHoursLearned sums every playback position, in hours rounded to one decimal.
func (svc *ProgressService) TotalHoursLearned() float64 {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	seconds := 0.0
	for _, entry := range svc.progress.Entries() {
		seconds += entry.Timestamp
	}
	return math.Round(seconds/3600*10) / 10
}

func (svc *ProgressService) CompletedLessonsCount() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	count := 0
	for _, entry := range svc.progress.Entries() {
		if entry.Status == model.StatusCompleted {
			count++
		}
	}
	return count
}

// ResumePosition is where playback should start. Completed lessons start over.
func (svc *ProgressService) ResumePosition(courseID, lessonID string) float64 {
	entry, ok := svc.LessonProgress(courseID, lessonID)
	if !ok || entry.Timestamp <= 0 || entry.Status == model.StatusCompleted {
		return 0
	}
	return entry.Timestamp
}

// LastPlayedLesson is the most recently touched lesson still in the course, else its first lesson.
// It is nil for a course without lessons.
func (svc *ProgressService) LastPlayedLesson(courseID string) (*model.Lesson, error) {
	course, err := svc.catalog.Course(courseID)
	if err != nil {
		return nil, err
	}
	return svc.lastPlayed(course), nil
}

func (svc *ProgressService) lastPlayed(course model.Course) *model.Lesson {
	lessons := course.FlatLessons()
	if len(lessons) == 0 {
		return nil
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	best := -1
	var bestAt int64
	for i, lesson := range lessons {
		entry, ok := svc.progress.Entry(course.ID, lesson.ID)
		if ok && (best < 0 || entry.LastUpdated > bestAt) {
			best, bestAt = i, entry.LastUpdated
		}
	}
	if best < 0 {
		best = 0
	}
	return &lessons[best]
}

func (svc *ProgressService) Dashboard() dto.DashboardResponse {
	courses := svc.catalog.Courses()
	summaries := make([]dto.CourseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, dto.CourseSummary{
			CourseID:   course.ID,
			Title:      course.Title,
			Batch:      course.Batch,
			Progress:   svc.courseProgress(course),
			LastPlayed: svc.lastPlayed(course),
		})
	}

	return dto.DashboardResponse{
		Courses:          summaries,
		TotalHours:       svc.TotalHoursLearned(),
		CompletedLessons: svc.CompletedLessonsCount(),
		DailyActivity:    svc.DailyActivity(),
	}
}

// Playback builds the player view of a lesson. Locked lessons are shown to admins only and
// local lessons without a live handle are reported as missing.
func (svc *ProgressService) Playback(courseID, lessonID string, isAdmin bool) (*dto.PlaybackResponse, error) {
	lesson, moduleID, err := svc.catalog.Lesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	prev, next, err := svc.catalog.Neighbors(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlaybackResponse{
		CourseID: courseID,
		ModuleID: moduleID,
		Lesson:   lesson,
		Status:   svc.LessonStatus(courseID, lessonID),
		ResumeAt: svc.ResumePosition(courseID, lessonID),
		Locked:   lesson.IsLocked && !isAdmin,
		Missing:  lesson.IsLocal && !svc.catalog.Handles().IsLive(lesson.URL),
		Previous: prev,
		Next:     next,
	}
	if resp.Locked {
		resp.Lesson.URL = ""
	}
	return resp, nil
}

// PruneOrphans drops progress for courses and lessons no longer in the catalog.
func (svc *ProgressService) PruneOrphans(ctx context.Context) (int, error) {
	known := make(map[string]map[string]struct{})
	for _, course := range svc.catalog.Courses() {
		lessons := make(map[string]struct{})
		for _, lesson := range course.FlatLessons() {
			lessons[lesson.ID] = struct{}{}
		}
		known[course.ID] = lessons
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	next := model.ProgressMap{}
	removed := 0
	for courseID, entries := range svc.progress {
		lessons, ok := known[courseID]
		for lessonID, entry := range entries {
			if _, exists := lessons[lessonID]; !ok || !exists {
				removed++
				continue
			}
			if next[courseID] == nil {
				next[courseID] = map[string]model.ProgressEntry{}
			}
			next[courseID][lessonID] = entry
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := svc.persist(ctx, next); err != nil {
		return 0, err
	}
	svc.progress = next

	log.WithField("removed", removed).Info("Pruned orphaned progress entries")
	return removed, nil
}
