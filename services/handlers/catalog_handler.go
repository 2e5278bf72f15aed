package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type CatalogHandler struct {
	catalogSvc CatalogServiceInterface
}

func NewCatalogHandler(catalogSvc CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogSvc: catalogSvc,
	}
}

// @Summary List Courses
// @Description Get every course with its modules and lessons
// @Tags catalog
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Course}
// @Router /api/v1/courses [get]
func (h *CatalogHandler) GetCourses(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.catalogSvc.Courses())
}

// @Summary Get Course
// @Tags catalog
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/v1/courses/{courseId} [get]
func (h *CatalogHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.catalogSvc.Course(c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", course)
}

// @Summary Lesson Neighbors
// @Description Get the previous and next lesson in course order
// @Tags catalog
// @Produce json
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.NeighborsResponse}
// @Router /api/v1/courses/{courseId}/lessons/{lessonId}/neighbors [get]
func (h *CatalogHandler) GetNeighbors(c *fiber.Ctx) error {
	prev, next, err := h.catalogSvc.Neighbors(c.Params("courseId"), c.Params("lessonId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.NeighborsResponse{Previous: prev, Next: next})
}

// ==================== ADMIN ====================

// @Summary Create Course
// @Tags admin
// @Produce json
// @Success 201 {object} shared.Response{data=model.Course}
// @Router /api/v1/admin/courses [post]
func (h *CatalogHandler) CreateCourse(c *fiber.Ctx) error {
	course, err := h.catalogSvc.AddCourse(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, course)
}

// @Summary Update Course
// @Tags admin
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param updateRequest body dto.UpdateCourseRequest true "Course details"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/v1/admin/courses/{courseId} [put]
func (h *CatalogHandler) UpdateCourse(c *fiber.Ctx) error {
	var req dto.UpdateCourseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	course, err := h.catalogSvc.UpdateCourseDetails(c.UserContext(), c.Params("courseId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", course)
}

// @Summary Delete Course
// @Description Delete a course and the stored content of its local lessons
// @Tags admin
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/courses/{courseId} [delete]
func (h *CatalogHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.catalogSvc.DeleteCourse(c.UserContext(), c.Params("courseId")); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Create Module
// @Tags admin
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 201 {object} shared.Response{data=model.Module}
// @Router /api/v1/admin/courses/{courseId}/modules [post]
func (h *CatalogHandler) CreateModule(c *fiber.Ctx) error {
	module, err := h.catalogSvc.AddModule(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, module)
}

// @Summary Update Module
// @Tags admin
// @Accept json
// @Produce json
// @Param updateRequest body dto.UpdateModuleRequest true "Module details"
// @Success 200 {object} shared.Response{data=model.Module}
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId} [put]
func (h *CatalogHandler) UpdateModule(c *fiber.Ctx) error {
	var req dto.UpdateModuleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	module, err := h.catalogSvc.UpdateModule(c.UserContext(), c.Params("courseId"), c.Params("moduleId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", module)
}

// @Summary Delete Module
// @Tags admin
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId} [delete]
func (h *CatalogHandler) DeleteModule(c *fiber.Ctx) error {
	if err := h.catalogSvc.DeleteModule(c.UserContext(), c.Params("courseId"), c.Params("moduleId")); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Reorder Modules
// @Tags admin
// @Accept json
// @Param reorderRequest body dto.ReorderRequest true "Indexes"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/v1/admin/courses/{courseId}/modules/reorder [post]
func (h *CatalogHandler) ReorderModules(c *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	courseID := c.Params("courseId")
	if err := h.catalogSvc.ReorderModules(c.UserContext(), courseID, *req.FromIndex, *req.ToIndex); err != nil {
		return err
	}

	return h.respondCourse(c, courseID)
}

// @Summary Create Lesson
// @Description New lessons are local when the module prefers static content
// @Tags admin
// @Produce json
// @Success 201 {object} shared.Response{data=model.Lesson}
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId}/lessons [post]
func (h *CatalogHandler) CreateLesson(c *fiber.Ctx) error {
	lesson, err := h.catalogSvc.AddLesson(c.UserContext(), c.Params("courseId"), c.Params("moduleId"))
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, lesson)
}

// @Summary Update Lesson
// @Tags admin
// @Accept json
// @Produce json
// @Param updateRequest body dto.UpdateLessonRequest true "Lesson details"
// @Success 200 {object} shared.Response{data=model.Lesson}
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId}/lessons/{lessonId} [put]
func (h *CatalogHandler) UpdateLesson(c *fiber.Ctx) error {
	var req dto.UpdateLessonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lesson, err := h.catalogSvc.UpdateLesson(c.UserContext(), c.Params("courseId"), c.Params("moduleId"), c.Params("lessonId"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", lesson)
}

// @Summary Delete Lesson
// @Tags admin
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId}/lessons/{lessonId} [delete]
func (h *CatalogHandler) DeleteLesson(c *fiber.Ctx) error {
	err := h.catalogSvc.DeleteLesson(c.UserContext(), c.Params("courseId"), c.Params("moduleId"), c.Params("lessonId"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Reorder Lessons
// @Tags admin
// @Accept json
// @Param reorderRequest body dto.ReorderRequest true "Indexes"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId}/lessons/reorder [post]
func (h *CatalogHandler) ReorderLessons(c *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	courseID := c.Params("courseId")
	err := h.catalogSvc.ReorderLessons(c.UserContext(), courseID, c.Params("moduleId"), *req.FromIndex, *req.ToIndex)
	if err != nil {
		return err
	}

	return h.respondCourse(c, courseID)
}

// @Summary Hydrate Content
// @Description Re-mint content handles for every local lesson
// @Tags admin
// @Produce json
// @Success 200 {object} shared.Response{data=dto.HydrationReport}
// @Router /api/v1/admin/content/hydrate [post]
func (h *CatalogHandler) Hydrate(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", h.catalogSvc.Hydrate(c.UserContext()))
}

func (h *CatalogHandler) respondCourse(c *fiber.Ctx, courseID string) error {
	course, err := h.catalogSvc.Course(courseID)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", course)
}
