package controller

import (
	"errors"

	"course_hub_backend/internal/service"
	"course_hub_backend/internal/util"
	"course_hub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

func (c *EnrollmentController) respondError(ctx *gin.Context, err error, notFoundMsg string) {
	var clientErr *service.ClientError
	if errors.As(err, &clientErr) {
		util.Error(ctx, clientErr.Status, clientErr.Message)
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.NotFound(ctx, notFoundMsg)
		return
	}
	util.LogInternalError(ctx, err)
}

// @Summary Enroll a user in a course
// @Description Validates the request and creates the enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body service.EnrollRequest true "Enrollment request"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req service.EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.EnrollmentService.Enroll(ctx.Request.Context(), req)
	if err != nil {
		monitoring.EnrollmentCounter.WithLabelValues("enroll", "error").Inc()
		c.respondError(ctx, err, "Enrollment not found")
		return
	}

	monitoring.EnrollmentCounter.WithLabelValues("enroll", "success").Inc()
	util.Success(ctx, result)
}

// @Summary List a user's enrollments
// @Description Enrollments joined with course and instructor, oldest first
// @Tags enrollments
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/enrollments/user/{userId} [get]
func (c *EnrollmentController) ListByUser(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))

	enrollments, err := c.EnrollmentService.GetByUser(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// @Summary Get one enrollment with computed progress
// @Description Recomputes the completion percentage and persists it when it changed
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/enrollments/{id} [get]
func (c *EnrollmentController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	detail, err := c.EnrollmentService.GetWithProgress(ctx.Request.Context(), id)
	if err != nil {
		c.respondError(ctx, err, "Enrollment not found")
		return
	}

	util.Success(ctx, detail)
}

// @Summary Update an enrollment
// @Description Applies a partial patch and stamps lastAccessedAt
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/enrollments/{id} [put]
func (c *EnrollmentController) Update(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.UpdateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.EnrollmentService.UpdateEnrollment(id, req)
	if err != nil {
		c.respondError(ctx, err, "Enrollment not found")
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary Get the per-lesson progress aggregate
// @Description Every lesson of the course appears, in order, with defaults for untouched lessons
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/enrollments/{id}/progress [get]
func (c *EnrollmentController) ProgressDetail(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	detail, err := c.EnrollmentService.GetProgressDetail(ctx.Request.Context(), id)
	if err != nil {
		c.respondError(ctx, err, "Enrollment not found")
		return
	}

	util.Success(ctx, detail)
}

// @Summary Unenroll
// @Description Deletes the enrollment and decrements the course's enrollment count
// @Tags enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/enrollments/{id} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.EnrollmentService.Unenroll(ctx.Request.Context(), id); err != nil {
		monitoring.EnrollmentCounter.WithLabelValues("unenroll", "error").Inc()
		c.respondError(ctx, err, "Enrollment not found")
		return
	}

	monitoring.EnrollmentCounter.WithLabelValues("unenroll", "success").Inc()
	util.Success(ctx, gin.H{"deletedId": id})
}

// @Summary Record lesson progress
// @Description Upserts the progress row for one lesson under an enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/enrollments/{id}/lessons/{lessonId}/progress [post]
func (c *EnrollmentController) UpdateLessonProgress(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	lessonID := util.MustParseUint(ctx.Param("lessonId"))

	var req service.LessonProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.EnrollmentService.UpdateLessonProgress(id, lessonID, req)
	if err != nil {
		c.respondError(ctx, err, "Enrollment or lesson not found")
		return
	}

	util.Success(ctx, row)
}
