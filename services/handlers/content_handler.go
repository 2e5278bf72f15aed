package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type ContentHandler struct {
	contentSvc ContentServiceInterface
	catalogSvc CatalogServiceInterface
}

func NewContentHandler(contentSvc ContentServiceInterface, catalogSvc CatalogServiceInterface) *ContentHandler {
	return &ContentHandler{
		contentSvc: contentSvc,
		catalogSvc: catalogSvc,
	}
}

// @Summary Stream Content
// @Description Serve the bytes behind a live content handle
// @Tags content
// @Param handle path string true "Content handle"
// @Success 200 {file} binary
// @Router /content/{handle} [get]
func (h *ContentHandler) GetContent(c *fiber.Ctx) error {
	handle := shared.HandlePrefix + strings.TrimPrefix(c.Params("handle"), shared.HandlePrefix)
	content, err := h.contentSvc.Open(handle)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, content.MimeType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).Send(content.Data)
}

// @Summary Upload Lesson Content
// @Description Store a file as the local content of a lesson
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video or PDF"
// @Success 200 {object} shared.Response{data=model.Lesson}
// @Router /api/v1/admin/courses/{courseId}/modules/{moduleId}/lessons/{lessonId}/content [post]
func (h *ContentHandler) UploadLessonContent(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "File is required")
	}

	data, err := readFormFile(file)
	if err != nil {
		return shared.NewBadRequestError(err, "Could not read file")
	}

	lesson, err := h.catalogSvc.UploadLessonContent(c.UserContext(), c.Params("courseId"), c.Params("moduleId"), c.Params("lessonId"), data)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", lesson)
}

// @Summary Import Folder
// @Description Import a folder of videos and PDFs as new modules. Each "files" part is paired with
// @Description the "paths" value at the same position holding its relative path.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} shared.Response{data=dto.ImportReport}
// @Router /api/v1/admin/courses/{courseId}/import [post]
func (h *ContentHandler) ImportFolder(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return shared.NewBadRequestError(err, "Multipart form is required")
	}

	headers := form.File["files"]
	paths := form.Value["paths"]
	if len(headers) == 0 {
		return shared.NewBadRequestError(nil, "No files uploaded")
	}

	files := make([]dto.UploadedFile, 0, len(headers))
	for i, header := range headers {
		data, err := readFormFile(header)
		if err != nil {
			return shared.NewBadRequestError(err, "Could not read "+header.Filename)
		}

		path := header.Filename
		if i < len(paths) && paths[i] != "" {
			path = paths[i]
		}
		files = append(files, dto.UploadedFile{Path: path, Data: data})
	}

	report, err := h.catalogSvc.ImportFolder(c.UserContext(), c.Params("courseId"), files)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", report)
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
