package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type AdminHandler struct {
	backupSvc      BackupServiceInterface
	maintenanceSvc MaintenanceServiceInterface
}

func NewAdminHandler(backupSvc BackupServiceInterface, maintenanceSvc MaintenanceServiceInterface) *AdminHandler {
	return &AdminHandler{
		backupSvc:      backupSvc,
		maintenanceSvc: maintenanceSvc,
	}
}

// @Summary Export Backup
// @Description Download courses, users and progress as one JSON document
// @Tags admin
// @Produce json
// @Success 200 {object} model.Backup
// @Router /api/v1/admin/backup [get]
func (h *AdminHandler) ExportBackup(c *fiber.Ctx) error {
	body, err := h.backupSvc.ExportJSON(c.UserContext())
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Attachment("learnhub_backup_" + time.Now().Format("2006-01-02") + ".json")
	return c.Status(fiber.StatusOK).Send(body)
}

// @Summary Import Backup
// @Description Restore every record present in a backup document
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/backup [post]
func (h *AdminHandler) ImportBackup(c *fiber.Ctx) error {
	body := c.Body()
	if file, err := c.FormFile("file"); err == nil {
		data, err := readFormFile(file)
		if err != nil {
			return shared.NewBadRequestError(err, "Could not read backup file")
		}
		body = data
	}

	if err := h.backupSvc.Import(c.UserContext(), body); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Data restored successfully", nil)
}

// @Summary Storage Stats
// @Tags admin
// @Produce json
// @Success 200 {object} shared.Response{data=dto.StorageStatsResponse}
// @Router /api/v1/admin/storage [get]
func (h *AdminHandler) GetStorageStats(c *fiber.Ctx) error {
	stats, err := h.maintenanceSvc.StorageStats(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}

// @Summary Clear Storage
// @Description Delete all users, progress and stored course content
// @Tags admin
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/v1/admin/storage [delete]
func (h *AdminHandler) ClearStorage(c *fiber.Ctx) error {
	if err := h.maintenanceSvc.ClearAll(c.UserContext()); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}
