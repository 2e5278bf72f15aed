package handlers

import (
	"context"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
)

type CatalogServiceInterface interface {
	Courses() []model.Course
	Course(courseID string) (model.Course, error)
	Neighbors(courseID, lessonID string) (*model.Lesson, *model.Lesson, error)
	Hydrate(ctx context.Context) dto.HydrationReport

	AddCourse(ctx context.Context) (model.Course, error)
	UpdateCourseDetails(ctx context.Context, courseID string, req dto.UpdateCourseRequest) (model.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error

	AddModule(ctx context.Context, courseID string) (model.Module, error)
	UpdateModule(ctx context.Context, courseID, moduleID string, req dto.UpdateModuleRequest) (model.Module, error)
	DeleteModule(ctx context.Context, courseID, moduleID string) error
	ReorderModules(ctx context.Context, courseID string, from, to int) error

	AddLesson(ctx context.Context, courseID, moduleID string) (model.Lesson, error)
	UpdateLesson(ctx context.Context, courseID, moduleID, lessonID string, req dto.UpdateLessonRequest) (model.Lesson, error)
	DeleteLesson(ctx context.Context, courseID, moduleID, lessonID string) error
	ReorderLessons(ctx context.Context, courseID, moduleID string, from, to int) error

	UploadLessonContent(ctx context.Context, courseID, moduleID, lessonID string, data []byte) (model.Lesson, error)
	ImportFolder(ctx context.Context, courseID string, files []dto.UploadedFile) (*dto.ImportReport, error)
}

type ProgressServiceInterface interface {
	RecordProgress(ctx context.Context, courseID, lessonID string, seconds, duration float64, forceComplete bool) (model.ProgressEntry, error)
	MarkComplete(ctx context.Context, courseID, lessonID string) (model.ProgressEntry, error)
	LessonProgress(courseID, lessonID string) (model.ProgressEntry, bool)
	CourseProgress(courseID string) int
	ModuleProgress(courseID, moduleID string) (dto.ModuleProgressResponse, error)
	LastPlayedLesson(courseID string) (*model.Lesson, error)
	DailyActivity() []dto.DailyActivity
	Dashboard() dto.DashboardResponse
	Playback(courseID, lessonID string, isAdmin bool) (*dto.PlaybackResponse, error)
	PruneOrphans(ctx context.Context) (int, error)
}

type ContentServiceInterface interface {
	Open(handle string) (*model.Content, error)
}

type BackupServiceInterface interface {
	ExportJSON(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
}

type MaintenanceServiceInterface interface {
	StorageStats(ctx context.Context) (*dto.StorageStatsResponse, error)
	ClearAll(ctx context.Context) error
}
