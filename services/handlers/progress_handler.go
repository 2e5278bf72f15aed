package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/middleware"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
	catalogSvc  CatalogServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface, catalogSvc CatalogServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc: progressSvc,
		catalogSvc:  catalogSvc,
	}
}

// @Summary Play Lesson
// @Description Get the player view of a lesson: content URL, resume point, lock state and neighbors
// @Tags player
// @Produce json
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.PlaybackResponse}
// @Router /api/v1/courses/{courseId}/lessons/{lessonId}/play [get]
func (h *ProgressHandler) GetPlayback(c *fiber.Ctx) error {
	playback, err := h.progressSvc.Playback(c.Params("courseId"), c.Params("lessonId"), middleware.IsAdmin(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", playback)
}

// @Summary Resume Course
// @Description Get the lesson the learner touched last, or the first lesson
// @Tags player
// @Produce json
// @Success 200 {object} shared.Response{data=model.Lesson}
// @Router /api/v1/courses/{courseId}/resume [get]
func (h *ProgressHandler) GetLastPlayed(c *fiber.Ctx) error {
	lesson, err := h.progressSvc.LastPlayedLesson(c.Params("courseId"))
	if err != nil {
		return err
	}
	if lesson == nil {
		return shared.NewNotFoundError(nil, "Course has no lessons")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", lesson)
}

// @Summary Record Progress
// @Description Record a playback position or read event for a lesson
// @Tags player
// @Accept json
// @Produce json
// @Param progressRequest body dto.ProgressEventRequest true "Playback event"
// @Success 200 {object} shared.Response{data=dto.LessonProgressResponse}
// @Router /api/v1/courses/{courseId}/lessons/{lessonId}/progress [post]
func (h *ProgressHandler) RecordProgress(c *fiber.Ctx) error {
	var req dto.ProgressEventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	courseID, lessonID := c.Params("courseId"), c.Params("lessonId")
	lesson, err := h.lesson(courseID, lessonID)
	if err != nil {
		return err
	}
	if lesson.IsLocked && !middleware.IsAdmin(c) {
		return shared.NewForbiddenError(nil, "Lesson is locked")
	}

	entry, err := h.progressSvc.RecordProgress(c.UserContext(), courseID, lessonID, req.Seconds, req.Duration, req.ForceComplete)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", toProgressResponse(courseID, lessonID, entry))
}

// @Summary Complete Lesson
// @Description Mark a PDF as read or a video as watched to the end
// @Tags player
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LessonProgressResponse}
// @Router /api/v1/courses/{courseId}/lessons/{lessonId}/complete [post]
func (h *ProgressHandler) CompleteLesson(c *fiber.Ctx) error {
	courseID, lessonID := c.Params("courseId"), c.Params("lessonId")
	entry, err := h.progressSvc.MarkComplete(c.UserContext(), courseID, lessonID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", toProgressResponse(courseID, lessonID, entry))
}

// @Summary Lesson Progress
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LessonProgressResponse}
// @Router /api/v1/courses/{courseId}/lessons/{lessonId}/progress [get]
func (h *ProgressHandler) GetLessonProgress(c *fiber.Ctx) error {
	courseID, lessonID := c.Params("courseId"), c.Params("lessonId")
	entry, ok := h.progressSvc.LessonProgress(courseID, lessonID)
	if !ok {
		entry = model.ProgressEntry{Status: model.StatusNotStarted}
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", toProgressResponse(courseID, lessonID, entry))
}

// @Summary Course Progress
// @Description Completion percentage of a course and each of its modules
// @Tags progress
// @Produce json
// @Router /api/v1/courses/{courseId}/progress [get]
func (h *ProgressHandler) GetCourseProgress(c *fiber.Ctx) error {
	course, err := h.catalogSvc.Course(c.Params("courseId"))
	if err != nil {
		return err
	}

	modules := make([]dto.ModuleProgressResponse, 0, len(course.Modules))
	for _, m := range course.Modules {
		progress, err := h.progressSvc.ModuleProgress(course.ID, m.ID)
		if err != nil {
			return err
		}
		modules = append(modules, progress)
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", fiber.Map{
		"courseId": course.ID,
		"progress": h.progressSvc.CourseProgress(course.ID),
		"modules":  modules,
	})
}

// @Summary Dashboard
// @Description Per-course progress, total hours, completed lessons and the weekly activity chart
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=dto.DashboardResponse}
// @Router /api/v1/dashboard [get]
func (h *ProgressHandler) GetDashboard(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.progressSvc.Dashboard())
}

// @Summary Daily Activity
// @Tags progress
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.DailyActivity}
// @Router /api/v1/dashboard/activity [get]
func (h *ProgressHandler) GetDailyActivity(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.progressSvc.DailyActivity())
}

// @Summary Prune Orphaned Progress
// @Description Drop progress entries of deleted courses and lessons
// @Tags admin
// @Produce json
// @Success 200 {object} shared.Response{data=dto.PruneReport}
// @Router /api/v1/admin/progress/prune [post]
func (h *ProgressHandler) PruneOrphans(c *fiber.Ctx) error {
	removed, err := h.progressSvc.PruneOrphans(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.PruneReport{Removed: removed})
}

func (h *ProgressHandler) lesson(courseID, lessonID string) (*model.Lesson, error) {
	course, err := h.catalogSvc.Course(courseID)
	if err != nil {
		return nil, err
	}
	for _, lesson := range course.FlatLessons() {
		if lesson.ID == lessonID {
			return &lesson, nil
		}
	}
	return nil, shared.ErrLessonNotFound
}

func toProgressResponse(courseID, lessonID string, entry model.ProgressEntry) dto.LessonProgressResponse {
	return dto.LessonProgressResponse{
		CourseID:    courseID,
		LessonID:    lessonID,
		Status:      entry.Status,
		Timestamp:   entry.Timestamp,
		LastUpdated: entry.LastUpdated,
	}
}
