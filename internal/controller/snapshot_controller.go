package controller

import (
	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SnapshotController exposes the JSON snapshot import/export over the admin
// API, mirroring the offline commands. Dir is the default snapshot directory
// from the configuration.
type SnapshotController struct {
	SnapshotService *service.SnapshotService
	Dir             string
}

func NewSnapshotController(snapshotService *service.SnapshotService, dir string) *SnapshotController {
	return &SnapshotController{SnapshotService: snapshotService, Dir: dir}
}

type snapshotRequest struct {
	Dir string `json:"dir"`
}

func (c *SnapshotController) resolveDir(ctx *gin.Context) (string, bool) {
	var req snapshotRequest
	if err := ctx.ShouldBindJSON(&req); err == nil && req.Dir != "" {
		return req.Dir, true
	}
	if c.Dir == "" {
		util.BadRequest(ctx, "snapshot directory is not configured")
		return "", false
	}
	return c.Dir, true
}

// @Summary Export all tables to a snapshot directory
// @Tags snapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/snapshot/export [post]
func (c *SnapshotController) ExportSnapshot(ctx *gin.Context) {
	dir, ok := c.resolveDir(ctx)
	if !ok {
		return
	}

	meta, err := c.SnapshotService.Export(dir)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"dir": dir, "exportedAt": meta.ExportedAt, "tables": meta.Tables})
}

// @Summary Import a snapshot directory, skipping rows that already exist
// @Tags snapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/snapshot/import [post]
func (c *SnapshotController) ImportSnapshot(ctx *gin.Context) {
	dir, ok := c.resolveDir(ctx)
	if !ok {
		return
	}

	result, err := c.SnapshotService.Import(dir)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"dir": dir, "inserted": result.Inserted})
}
