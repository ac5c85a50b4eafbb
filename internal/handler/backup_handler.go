package handler

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/storehouse-api/internal/dto"
	appErrors "github.com/noah-isme/storehouse-api/pkg/errors"
	"github.com/noah-isme/storehouse-api/pkg/response"
	"github.com/noah-isme/storehouse-api/pkg/storage"
)

type backupService interface {
	Enqueue(ctx context.Context) (*dto.BackupJobResponse, error)
	Status(id string) (*dto.BackupJobResponse, error)
	List() ([]storage.StoredFile, error)
	Open(token string) (*os.File, string, error)
}

// BackupHandler exposes snapshot backups.
type BackupHandler struct {
	backups backupService
}

// NewBackupHandler constructs BackupHandler.
func NewBackupHandler(backups backupService) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// Create godoc
// @Summary Queue a backup
// @Tags Backups
// @Produce json
// @Security BearerAuth
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	job, err := h.backups.Enqueue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// List godoc
// @Summary List stored backups
// @Tags Backups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	files, err := h.backups.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Status godoc
// @Summary Backup job status
// @Tags Backups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /admin/backups/jobs/{id} [get]
func (h *BackupHandler) Status(c *gin.Context) {
	job, err := h.backups.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a backup with a signed token
// @Tags Backups
// @Produce json
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /backups/download [get]
func (h *BackupHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download token required"))
		return
	}
	file, name, err := h.backups.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
