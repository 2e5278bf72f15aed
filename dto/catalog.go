package dto

import "github.com/lac-hong-legacy/learnhub/model"

// ==================== COURSE DTOs ====================

type UpdateCourseRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Batch        *string `json:"batch" validate:"omitempty,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	ThumbnailURL *string `json:"thumbnailUrl" validate:"omitempty,url"`
}

func (u UpdateCourseRequest) Validate() error {
	return GetValidator().Struct(u)
}

// ==================== MODULE DTOs ====================

type UpdateModuleRequest struct {
	Title             *string `json:"title" validate:"omitempty,min=1,max=200"`
	IsOpen            *bool   `json:"isOpen"`
	DefaultLessonType *string `json:"defaultLessonType" validate:"omitempty,lesson_default"`
}

func (u UpdateModuleRequest) Validate() error {
	return GetValidator().Struct(u)
}

// ==================== LESSON DTOs ====================

type UpdateLessonRequest struct {
	Title    *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Type     *string  `json:"type" validate:"omitempty,lesson_type"`
	URL      *string  `json:"url" validate:"omitempty,max=2048"`
	Duration *float64 `json:"duration" validate:"omitempty,gte=0"`
	IsLocked *bool    `json:"isLocked"`
	IsLocal  *bool    `json:"isLocal"`
}

func (u UpdateLessonRequest) Validate() error {
	return GetValidator().Struct(u)
}

// ReorderRequest moves the item at FromIndex to ToIndex. Out of range indexes are ignored.
type ReorderRequest struct {
	FromIndex *int `json:"fromIndex" validate:"required"`
	ToIndex   *int `json:"toIndex" validate:"required"`
}

func (r ReorderRequest) Validate() error {
	return GetValidator().Struct(r)
}

type NeighborsResponse struct {
	Previous *model.Lesson `json:"previous"`
	Next     *model.Lesson `json:"next"`
}

// ==================== IMPORT DTOs ====================

// UploadedFile is one file of a folder upload. Path is relative to the selected folder's
// parent, e.g. "Course/01 Basics/01 intro.mp4".
type UploadedFile struct {
	Path string
	Data []byte
}

type ImportReport struct {
	CourseID string   `json:"courseId"`
	Modules  int      `json:"modules"`
	Lessons  int      `json:"lessons"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed"`
}

type HydrationReport struct {
	Hydrated int      `json:"hydrated"`
	Missing  []string `json:"missing"`
	Failed   []string `json:"failed"`
}
