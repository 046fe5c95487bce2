package controller

import (
	"errors"

	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

func (c *LessonController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary List a course's lessons in order
// @Tags lessons
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/lessons [get]
func (c *LessonController) GetLessons(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))

	lessons, err := c.LessonService.GetLessons(courseID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Success(ctx, lessons)
}

// @Summary Add a lesson to a course
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 201 {object} util.Response
// @Router /api/admin/courses/{id}/lessons [post]
func (c *LessonController) CreateLesson(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))

	var req service.CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.CreateLesson(courseID, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Created(ctx, lesson)
}

// @Summary Update a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{id} [put]
func (c *LessonController) UpdateLesson(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.UpdateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.UpdateLesson(id, req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}

// @Summary Delete a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{id} [delete]
func (c *LessonController) DeleteLesson(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.LessonService.DeleteLesson(id); err != nil {
		c.respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deletedId": id})
}

// @Summary Upload a lesson video
// @Description Stores the video and probes its duration
// @Tags lessons
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param video formData file true "Video file"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{id}/video [post]
func (c *LessonController) UploadVideo(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	header, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "video file is required")
		return
	}

	lesson, err := c.LessonService.AttachVideo(ctx.Request.Context(), id, header)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, lesson)
}
