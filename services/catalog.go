package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/seed/seeders"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

// CatalogService owns the course list. Reads return deep copies; every mutation persists the
// whole snapshot before it becomes visible.
type CatalogService struct {
	appContext.DefaultService

	records RecordStore
	blobs   BlobStore
	handles *HandleRegistry

	mu        sync.RWMutex
	courses   []model.Course
	listeners []func([]model.Course)

	cleanup sync.WaitGroup
	now     func() time.Time
}

const CATALOG_SVC = "catalog_svc"

// errUnchanged aborts a mutation without persisting and without surfacing an error.
var errUnchanged = errors.New("catalog unchanged")

func NewCatalogService(records RecordStore, blobs BlobStore, handles *HandleRegistry) *CatalogService {
	if handles == nil {
		handles = NewHandleRegistry()
	}
	return &CatalogService{
		records: records,
		blobs:   blobs,
		handles: handles,
		now:     time.Now,
	}
}

func (svc CatalogService) Id() string {
	return CATALOG_SVC
}

func (svc *CatalogService) Start() error {
	if svc.records == nil {
		storage := svc.Service(STORAGE_SVC).(*StorageService)
		svc.records = storage.Records()
		svc.blobs = storage.Blobs()
	}
	if svc.handles == nil {
		svc.handles = NewHandleRegistry()
	}
	if svc.now == nil {
		svc.now = time.Now
	}

	ctx := context.Background()
	if err := svc.Load(ctx); err != nil {
		return err
	}
	svc.Hydrate(ctx)
	return nil
}

func (svc *CatalogService) Shutdown() {
	svc.WaitForCleanup()
	if svc.handles != nil {
		svc.handles.ReleaseAll()
	}
}

func (svc *CatalogService) Handles() *HandleRegistry {
	return svc.handles
}

func (svc *CatalogService) Blobs() BlobStore {
	return svc.blobs
}

// ==================== READS ====================

func (svc *CatalogService) Courses() []model.Course {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return model.CloneCourses(svc.courses)
}

func (svc *CatalogService) Course(courseID string) (model.Course, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	i := indexOfCourse(svc.courses, courseID)
	if i < 0 {
		return model.Course{}, ErrCourseNotFound
	}
	return svc.courses[i].Clone(), nil
}

// Lesson finds a lesson and the module that holds it.
func (svc *CatalogService) Lesson(courseID, lessonID string) (model.Lesson, string, error) {
	course, err := svc.Course(courseID)
	if err != nil {
		return model.Lesson{}, "", err
	}
	for _, m := range course.Modules {
		if i := m.LessonIndex(lessonID); i >= 0 {
			return m.Lessons[i], m.ID, nil
		}
	}
	return model.Lesson{}, "", ErrLessonNotFound
}

// Neighbors returns the lessons before and after lessonID in the course's flattened order.
func (svc *CatalogService) Neighbors(courseID, lessonID string) (*model.Lesson, *model.Lesson, error) {
	course, err := svc.Course(courseID)
	if err != nil {
		return nil, nil, err
	}

	lessons := course.FlatLessons()
	for i := range lessons {
		if lessons[i].ID != lessonID {
			continue
		}
		var prev, next *model.Lesson
		if i > 0 {
			prev = &lessons[i-1]
		}
		if i < len(lessons)-1 {
			next = &lessons[i+1]
		}
		return prev, next, nil
	}
	return nil, nil, ErrLessonNotFound
}

// OnChange registers a listener called with a snapshot after every visible change.
func (svc *CatalogService) OnChange(listener func([]model.Course)) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.listeners = append(svc.listeners, listener)
}

func (svc *CatalogService) notify(snapshot []model.Course) {
	svc.mu.RLock()
	listeners := make([]func([]model.Course), len(svc.listeners))
	copy(listeners, svc.listeners)
	svc.mu.RUnlock()

	for _, listener := range listeners {
		listener(model.CloneCourses(snapshot))
	}
}

// ==================== LOAD / SAVE ====================

// Load reads the catalog snapshot. An absent snapshot is seeded and saved; an unreadable one
// falls back to the defaults without overwriting what is stored.
func (svc *CatalogService) Load(ctx context.Context) error {
	value, ok, err := svc.records.Get(ctx, shared.RecordCourses)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	if !ok {
		courses := seeders.DefaultCourses()
		if err := svc.persist(ctx, courses); err != nil {
			return err
		}
		svc.replace(courses)
		return nil
	}

	var courses []model.Course
	if err := shared.UnmarshalString(value, &courses); err != nil {
		log.WithFields(log.Fields{
			"record": shared.RecordCourses,
			"error":  err.Error(),
		}).Error("Failed to parse catalog, using defaults")
		courses = seeders.DefaultCourses()
	}
	svc.replace(courses)
	return nil
}

// Reload drops every live handle and reloads and re-hydrates the stored catalog.
func (svc *CatalogService) Reload(ctx context.Context) error {
	svc.handles.ReleaseAll()
	if err := svc.Load(ctx); err != nil {
		return err
	}
	svc.Hydrate(ctx)
	return nil
}

func (svc *CatalogService) replace(courses []model.Course) {
	svc.mu.Lock()
	svc.courses = courses
	snapshot := model.CloneCourses(courses)
	svc.mu.Unlock()
	svc.notify(snapshot)
}

// persist writes the whole catalog. Handles are session scoped so local lesson URLs are blanked.
func (svc *CatalogService) persist(ctx context.Context, courses []model.Course) error {
	snapshot := model.CloneCourses(courses)
	for ci := range snapshot {
		for mi := range snapshot[ci].Modules {
			lessons := snapshot[ci].Modules[mi].Lessons
			for li := range lessons {
				if lessons[li].IsLocal {
					lessons[li].URL = ""
				}
			}
		}
	}

	value, err := shared.MarshalString(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := svc.records.Set(ctx, shared.RecordCourses, value); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the catalog, persists the copy and only then swaps it in.
// fn returns the IDs of local lessons it removed; their handles are released right away and
// their content is deleted in the background.
func (svc *CatalogService) mutate(ctx context.Context, fn func(courses []model.Course) ([]model.Course, []string, error)) error {
	svc.mu.Lock()

	next, removed, err := fn(model.CloneCourses(svc.courses))
	if err != nil {
		svc.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}

	if err := svc.persist(ctx, next); err != nil {
		svc.mu.Unlock()
		return err
	}

	svc.courses = next
	snapshot := model.CloneCourses(next)
	svc.mu.Unlock()

	for _, lessonID := range removed {
		svc.handles.ReleaseLesson(lessonID)
	}
	svc.scheduleCleanup(removed)
	svc.notify(snapshot)
	return nil
}

func (svc *CatalogService) scheduleCleanup(lessonIDs []string) {
	for _, lessonID := range lessonIDs {
		svc.cleanup.Add(1)
		go func(lessonID string) {
			defer svc.cleanup.Done()

			err := svc.blobs.Delete(context.Background(), lessonID)
			recordBlobOp("delete", err)
			if err != nil {
				cascadeCleanupFailuresTotal.Inc()
				log.WithFields(log.Fields{
					"lesson_id": lessonID,
					"error":     err.Error(),
				}).Warn("Failed to delete lesson content")
			}
		}(lessonID)
	}
}

// WaitForCleanup blocks until every scheduled content deletion has finished.
func (svc *CatalogService) WaitForCleanup() {
	svc.cleanup.Wait()
}

// ==================== COURSES ====================

func (svc *CatalogService) AddCourse(ctx context.Context) (model.Course, error) {
	course := model.Course{
		ID:           newID("c_"),
		Title:        "New Course",
		Batch:        "Batch " + strconv.Itoa(svc.now().Year()),
		Description:  "Description here...",
		ThumbnailURL: "https://picsum.photos/400/225",
		Modules:      []model.Module{},
	}

	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		return append(courses, course), nil, nil
	})
	if err != nil {
		return model.Course{}, err
	}
	return course, nil
}

func (svc *CatalogService) UpdateCourseDetails(ctx context.Context, courseID string, req dto.UpdateCourseRequest) (model.Course, error) {
	var updated model.Course
	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		i := indexOfCourse(courses, courseID)
		if i < 0 {
			return nil, nil, ErrCourseNotFound
		}

		course := &courses[i]
		if req.Title != nil {
			course.Title = *req.Title
		}
		if req.Batch != nil {
			course.Batch = *req.Batch
		}
		if req.Description != nil {
			course.Description = *req.Description
		}
		if req.ThumbnailURL != nil {
			course.ThumbnailURL = *req.ThumbnailURL
		}
		updated = course.Clone()
		return courses, nil, nil
	})
	return updated, err
}

func (svc *CatalogService) DeleteCourse(ctx context.Context, courseID string) error {
	return svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		i := indexOfCourse(courses, courseID)
		if i < 0 {
			return nil, nil, ErrCourseNotFound
		}
		removed := courses[i].LocalLessonIDs()
		return append(courses[:i], courses[i+1:]...), removed, nil
	})
}

// ==================== MODULES ====================

func (svc *CatalogService) AddModule(ctx context.Context, courseID string) (model.Module, error) {
	module := model.Module{
		ID:                newID("m_"),
		Title:             "New Module",
		Lessons:           []model.Lesson{},
		IsOpen:            true,
		DefaultLessonType: model.LessonDefaultDynamic,
	}

	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		i := indexOfCourse(courses, courseID)
		if i < 0 {
			return nil, nil, ErrCourseNotFound
		}
		courses[i].Modules = append(courses[i].Modules, module)
		return courses, nil, nil
	})
	if err != nil {
		return model.Module{}, err
	}
	return module, nil
}

func (svc *CatalogService) UpdateModule(ctx context.Context, courseID, moduleID string, req dto.UpdateModuleRequest) (model.Module, error) {
	var updated model.Module
	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		module, err := findModule(courses, courseID, moduleID)
		if err != nil {
			return nil, nil, err
		}

		if req.Title != nil {
			module.Title = *req.Title
		}
		if req.IsOpen != nil {
			module.IsOpen = *req.IsOpen
		}
		if req.DefaultLessonType != nil {
			module.DefaultLessonType = *req.DefaultLessonType
		}
		updated = module.Clone()
		return courses, nil, nil
	})
	return updated, err
}

func (svc *CatalogService) DeleteModule(ctx context.Context, courseID, moduleID string) error {
	return svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		ci := indexOfCourse(courses, courseID)
		if ci < 0 {
			return nil, nil, ErrCourseNotFound
		}
		mi := courses[ci].ModuleIndex(moduleID)
		if mi < 0 {
			return nil, nil, ErrModuleNotFound
		}

		modules := courses[ci].Modules
		removed := modules[mi].LocalLessonIDs()
		courses[ci].Modules = append(modules[:mi], modules[mi+1:]...)
		return courses, removed, nil
	})
}

// ReorderModules moves a module within its course. Out of range indexes leave the catalog as is.
func (svc *CatalogService) ReorderModules(ctx context.Context, courseID string, from, to int) error {
	return svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		ci := indexOfCourse(courses, courseID)
		if ci < 0 {
			return nil, nil, errUnchanged
		}
		modules, ok := move(courses[ci].Modules, from, to)
		if !ok {
			return nil, nil, errUnchanged
		}
		courses[ci].Modules = modules
		return courses, nil, nil
	})
}

// ==================== LESSONS ====================

func (svc *CatalogService) AddLesson(ctx context.Context, courseID, moduleID string) (model.Lesson, error) {
	lesson := model.Lesson{
		ID:    newID("l_"),
		Title: "New Lesson",
		Type:  model.LessonTypeVideo,
	}

	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		module, err := findModule(courses, courseID, moduleID)
		if err != nil {
			return nil, nil, err
		}
		lesson.IsLocal = module.DefaultLessonType == model.LessonDefaultStatic
		module.Lessons = append(module.Lessons, lesson)
		return courses, nil, nil
	})
	if err != nil {
		return model.Lesson{}, err
	}
	return lesson, nil
}

// UpdateLesson edits lesson metadata. The URL of a local lesson is its handle and is not editable;
// switching a lesson from local to remote drops its stored content.
func (svc *CatalogService) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID string, req dto.UpdateLessonRequest) (model.Lesson, error) {
	var updated model.Lesson
	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		module, err := findModule(courses, courseID, moduleID)
		if err != nil {
			return nil, nil, err
		}
		li := module.LessonIndex(lessonID)
		if li < 0 {
			return nil, nil, ErrLessonNotFound
		}

		lesson := &module.Lessons[li]
		var removed []string
		if req.IsLocal != nil && lesson.IsLocal != *req.IsLocal {
			if lesson.IsLocal {
				removed = append(removed, lesson.ID)
				lesson.URL = ""
			}
			lesson.IsLocal = *req.IsLocal
		}
		if req.Title != nil {
			lesson.Title = *req.Title
		}
		if req.Type != nil {
			lesson.Type = *req.Type
		}
		if req.URL != nil && !lesson.IsLocal {
			lesson.URL = *req.URL
		}
		if req.Duration != nil {
			lesson.Duration = *req.Duration
		}
		if req.IsLocked != nil {
			lesson.IsLocked = *req.IsLocked
		}
		updated = *lesson
		return courses, removed, nil
	})
	return updated, err
}

func (svc *CatalogService) DeleteLesson(ctx context.Context, courseID, moduleID, lessonID string) error {
	return svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		module, err := findModule(courses, courseID, moduleID)
		if err != nil {
			return nil, nil, err
		}
		li := module.LessonIndex(lessonID)
		if li < 0 {
			return nil, nil, ErrLessonNotFound
		}

		var removed []string
		if module.Lessons[li].IsLocal {
			removed = append(removed, lessonID)
		}
		module.Lessons = append(module.Lessons[:li], module.Lessons[li+1:]...)
		return courses, removed, nil
	})
}

// ReorderLessons moves a lesson within its module. Out of range indexes leave the catalog as is.
func (svc *CatalogService) ReorderLessons(ctx context.Context, courseID, moduleID string, from, to int) error {
	return svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		module, err := findModule(courses, courseID, moduleID)
		if err != nil {
			return nil, nil, errUnchanged
		}
		lessons, ok := move(module.Lessons, from, to)
		if !ok {
			return nil, nil, errUnchanged
		}
		module.Lessons = lessons
		return courses, nil, nil
	})
}

// UploadLessonContent stores data as the content of an existing lesson and makes it local.
// A failed write leaves the lesson and its stored content untouched.
func (svc *CatalogService) UploadLessonContent(ctx context.Context, courseID, moduleID, lessonID string, data []byte) (model.Lesson, error) {
	svc.mu.Lock()

	next := model.CloneCourses(svc.courses)
	module, err := findModule(next, courseID, moduleID)
	if err != nil {
		svc.mu.Unlock()
		return model.Lesson{}, err
	}
	li := module.LessonIndex(lessonID)
	if li < 0 {
		svc.mu.Unlock()
		return model.Lesson{}, ErrLessonNotFound
	}

	lesson := &module.Lessons[li]
	var previous []byte
	hadPrevious := false
	if lesson.IsLocal {
		previous, hadPrevious, err = svc.blobs.Get(ctx, lessonID)
		recordBlobOp("get", err)
		if err != nil {
			svc.mu.Unlock()
			return model.Lesson{}, fmt.Errorf("failed to read lesson content: %w", err)
		}
	}

	err = svc.blobs.Put(ctx, lessonID, data)
	recordBlobOp("put", err)
	if err != nil {
		svc.mu.Unlock()
		return model.Lesson{}, fmt.Errorf("failed to store lesson content: %w", err)
	}

	lesson.IsLocal = true
	if err := svc.persist(ctx, next); err != nil {
		if hadPrevious {
			restoreErr := svc.blobs.Put(ctx, lessonID, previous)
			recordBlobOp("put", restoreErr)
			if restoreErr != nil {
				log.WithFields(log.Fields{
					"lesson_id": lessonID,
					"error":     restoreErr.Error(),
				}).Error("Failed to restore previous lesson content")
			}
			svc.mu.Unlock()
			return model.Lesson{}, err
		}
		svc.mu.Unlock()
		svc.scheduleCleanup([]string{lessonID})
		return model.Lesson{}, err
	}

	lesson.URL = svc.handles.Acquire(lessonID, data)
	svc.courses = next
	updated := *lesson
	snapshot := model.CloneCourses(next)
	svc.mu.Unlock()

	svc.notify(snapshot)
	return updated, nil
}

// ==================== STORAGE ====================

// Clear discards the in-memory catalog and every live handle and reseeds the defaults.
// The caller is expected to have wiped the stores.
func (svc *CatalogService) Clear(ctx context.Context) error {
	svc.WaitForCleanup()
	svc.handles.ReleaseAll()

	courses := seeders.DefaultCourses()
	if err := svc.persist(ctx, courses); err != nil {
		return err
	}
	svc.replace(courses)
	return nil
}

// ==================== HELPERS ====================

func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return prefix + uuid.NewString()
	}
	return prefix + id.String()
}

func indexOfCourse(courses []model.Course, courseID string) int {
	for i := range courses {
		if courses[i].ID == courseID {
			return i
		}
	}
	return -1
}

func findModule(courses []model.Course, courseID, moduleID string) (*model.Module, error) {
	ci := indexOfCourse(courses, courseID)
	if ci < 0 {
		return nil, ErrCourseNotFound
	}
	mi := courses[ci].ModuleIndex(moduleID)
	if mi < 0 {
		return nil, ErrModuleNotFound
	}
	return &courses[ci].Modules[mi], nil
}

// move relocates items[from] to position to. It reports false when either index is out of range.
func move[T any](items []T, from, to int) ([]T, bool) {
	if from < 0 || to < 0 || from >= len(items) || to >= len(items) {
		return nil, false
	}

	out := make([]T, 0, len(items))
	moved := items[from]
	for i, item := range items {
		if i != from {
			out = append(out, item)
		}
	}
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, true
}
