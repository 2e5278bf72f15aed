package dto

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
)

type ProgressEventRequest struct {
	Seconds       float64 `json:"seconds" validate:"gte=0"`
	Duration      float64 `json:"duration" validate:"gte=0"`
	ForceComplete bool    `json:"forceComplete"`
}

func (p ProgressEventRequest) Validate() error {
	return GetValidator().Struct(p)
}

type LessonProgressResponse struct {
	CourseID    string  `json:"courseId"`
	LessonID    string  `json:"lessonId"`
	Status      string  `json:"status"`
	Timestamp   float64 `json:"timestamp"`
	LastUpdated int64   `json:"lastUpdated"`
}

type ModuleProgressResponse struct {
	ModuleID  string `json:"moduleId"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Label     string `json:"label"` // "completed/total"
}

type DailyActivity struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

type CourseSummary struct {
	CourseID   string        `json:"courseId"`
	Title      string        `json:"title"`
	Batch      string        `json:"batch"`
	Progress   int           `json:"progress"`
	LastPlayed *model.Lesson `json:"lastPlayed,omitempty"`
}

type DashboardResponse struct {
	Courses          []CourseSummary `json:"courses"`
	TotalHours       float64         `json:"totalHours"`
	CompletedLessons int             `json:"completedLessons"`
	DailyActivity    []DailyActivity `json:"dailyActivity"`
}

// PlaybackResponse is everything the player needs to show one lesson.
type PlaybackResponse struct {
	CourseID string        `json:"courseId"`
	ModuleID string        `json:"moduleId"`
	Lesson   model.Lesson  `json:"lesson"`
	Status   string        `json:"status"`
	ResumeAt float64       `json:"resumeAt"`
	Locked   bool          `json:"locked"`
	Missing  bool          `json:"missing"` // local content has no live handle
	Previous *model.Lesson `json:"previous"`
	Next     *model.Lesson `json:"next"`
}

type PruneReport struct {
	Removed int `json:"removed"`
}
